package fileio

import (
	"sync"

	"github.com/mappichat/precinct-forecasts/src/project_types"
	"go.uber.org/zap"
)

type cacheKey struct {
	source string
	nrows  int
}

// Loader memoizes loaded datasets per (source, row limit). Returned values
// are shared between callers and must not be modified.
type Loader struct {
	mu         sync.Mutex
	regions    map[cacheKey][]project_types.Precinct
	population map[cacheKey]*project_types.PopulationTable
	generation int

	loadRegions    func(string, int) ([]project_types.Precinct, error)
	loadPopulation func(string, int) (*project_types.PopulationTable, error)
}

func NewLoader() *Loader {
	return &Loader{
		regions:        map[cacheKey][]project_types.Precinct{},
		population:     map[cacheKey]*project_types.PopulationTable{},
		loadRegions:    LoadRegionData,
		loadPopulation: LoadPopulationData,
	}
}

func (l *Loader) Regions(source string, nrows int) ([]project_types.Precinct, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := cacheKey{source, nrows}
	if precincts, ok := l.regions[key]; ok {
		return precincts, nil
	}
	zap.S().Infof("loading precinct data from %s (max %d rows)", source, nrows)
	precincts, err := l.loadRegions(source, nrows)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("%d precincts loaded", len(precincts))
	l.regions[key] = precincts
	return precincts, nil
}

func (l *Loader) Population(source string, nrows int) (*project_types.PopulationTable, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := cacheKey{source, nrows}
	if table, ok := l.population[key]; ok {
		return table, nil
	}
	zap.S().Infof("loading population data from %s (max %d rows)", source, nrows)
	table, err := l.loadPopulation(source, nrows)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("%d population records loaded for years %v", len(table.Records), table.Years())
	l.population[key] = table
	return table, nil
}

// Invalidate drops every cached dataset so the next call reloads from source.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regions = map[cacheKey][]project_types.Precinct{}
	l.population = map[cacheKey]*project_types.PopulationTable{}
	l.generation++
}

// Generation changes on every Invalidate; results derived from cached data
// can be keyed on it.
func (l *Loader) Generation() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}
