package engine

import (
	"fmt"
	"strings"

	"github.com/mappichat/precinct-forecasts/src/fileio"
	"github.com/mappichat/precinct-forecasts/src/project_types"
)

var Scenarios = []project_types.Scenario{
	{Key: "low", Label: "Low - the status quo", Level: 0},
	{Key: "medium", Label: "Medium - some increased forces to develop land", Level: 0.5},
	{Key: "high", Label: "High - intense pressure to develop all land available", Level: 1.0},
}

// ScenarioByName matches a scenario key or its full label, ignoring case.
func ScenarioByName(name string) (project_types.Scenario, error) {
	name = strings.TrimSpace(name)
	for _, s := range Scenarios {
		if strings.EqualFold(name, s.Key) || strings.EqualFold(name, s.Label) {
			return s, nil
		}
	}
	return project_types.Scenario{}, fmt.Errorf("%w: %q", project_types.ErrUnknownScenario, name)
}

// Merge inner-joins precincts with the year's population records on precinct
// name, in precinct order, and scales households, population and the
// normalized households by 1 + level * gentrification factor. Precincts or
// records without a partner are left out.
func Merge(precincts []project_types.Precinct, table *project_types.PopulationTable, year int, level float64) ([]project_types.MergedRow, error) {
	records, err := table.Year(year)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", err, year)
	}
	if level != 0 && !table.HasGentrificationFactor {
		return nil, project_types.ErrNoGentrificationFactor
	}

	byName := make(map[string][]project_types.PopulationRecord, len(records))
	for _, rec := range records {
		byName[rec.PrecinctName] = append(byName[rec.PrecinctName], rec)
	}

	rows := []project_types.MergedRow{}
	for _, precinct := range precincts {
		for _, rec := range byName[precinct.Name] {
			adjust := 1 + level*rec.GentrificationFactor
			rows = append(rows, project_types.MergedRow{
				PrecinctName:         precinct.Name,
				PrecinctShape:        precinct.Shape,
				PrecinctArea:         precinct.Area,
				Color:                precinct.Color,
				Year:                 rec.Year,
				TotalHouseholds:      rec.TotalHouseholds * adjust,
				AverageHouseholdSize: rec.AverageHouseholdSize,
				Population:           rec.Population * adjust,
				TotalHouseholdsNorm:  rec.TotalHouseholdsNorm * adjust,
				GentrificationFactor: rec.GentrificationFactor,
			})
		}
	}
	return rows, nil
}

// Dashboard answers viewer interactions from the cached datasets.
type Dashboard struct {
	loader  *fileio.Loader
	options project_types.Options
}

func NewDashboard(loader *fileio.Loader, options project_types.Options) *Dashboard {
	return &Dashboard{loader: loader, options: options}
}

func (d *Dashboard) Options() project_types.Options {
	return d.options
}

func (d *Dashboard) Loader() *fileio.Loader {
	return d.loader
}

func (d *Dashboard) Precincts() ([]project_types.Precinct, error) {
	return d.loader.Regions(d.options.RegionDataPath, d.options.MaxRows)
}

func (d *Dashboard) Population() (*project_types.PopulationTable, error) {
	return d.loader.Population(d.options.PopulationDataPath, d.options.MaxRows)
}

// Scenario merges and adjusts the datasets for one year and scenario.
func (d *Dashboard) Scenario(year int, scenario string) ([]project_types.MergedRow, error) {
	s, err := ScenarioByName(scenario)
	if err != nil {
		return nil, err
	}
	precincts, err := d.Precincts()
	if err != nil {
		return nil, fmt.Errorf("loading precincts: %w", err)
	}
	table, err := d.Population()
	if err != nil {
		return nil, fmt.Errorf("loading population: %w", err)
	}
	return Merge(precincts, table, year, s.Level)
}

// Deck renders the scenario for the map.
func (d *Dashboard) Deck(year int, scenario string) (project_types.Deck, error) {
	rows, err := d.Scenario(year, scenario)
	if err != nil {
		return project_types.Deck{}, err
	}
	return BuildDeck(rows, d.options), nil
}
