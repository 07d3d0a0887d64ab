package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"go.uber.org/zap"
)

const maxInsert int = 65535

func SqlInitialize(connectString string) (*sqlx.DB, error) {
	var err error
	Sqldb, err := sqlx.Connect("postgres", connectString)
	if err != nil {
		return Sqldb, err
	}
	if err = Sqldb.Ping(); err != nil {
		return Sqldb, err
	}
	return Sqldb, nil
}

func CreateTables(db *sqlx.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS precincts (
		name text PRIMARY KEY,
		area_km2 text,
		color int[],
		shape text
	);`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS population (
		year int,
		precinct text,
		total_households double precision,
		average_household_size double precision,
		population double precision,
		total_households_norm double precision,
		gentrification_factor double precision,
		PRIMARY KEY (year, precinct)
	);`); err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS precinct_tiles (
		h3 text PRIMARY KEY,
		precinct text
	);`); err != nil {
		return err
	}

	return nil
}

// batches splits total rows into [start, end) ranges that keep every insert
// under the postgres bind parameter limit.
func batches(total int, columns int) [][2]int {
	size := maxInsert / columns
	out := [][2]int{}
	for i := 0; i < total; i += size {
		end := i + size
		if end > total {
			end = total
		}
		out = append(out, [2]int{i, end})
	}
	return out
}

func insertQuery(table string, columns []string) string {
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (:%s) ON CONFLICT DO NOTHING`,
		table, strings.Join(columns, ", "), strings.Join(columns, ", :"))
}

func insertBatched(db *sqlx.DB, table string, columns []string, values []map[string]interface{}) error {
	query := insertQuery(table, columns)
	for _, b := range batches(len(values), len(columns)) {
		zap.S().Debugf("%s: %.1f%%", table, 100*float64(b[0])/float64(len(values)))
		if _, err := db.NamedExec(query, values[b[0]:b[1]]); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return nil
}

func PopulatePrecincts(db *sqlx.DB, precincts []project_types.Precinct) error {
	values := []map[string]interface{}{}
	for _, p := range precincts {
		color := make([]int64, len(p.Color))
		for i, c := range p.Color {
			color[i] = int64(c)
		}
		values = append(values, map[string]interface{}{
			"name":     p.Name,
			"area_km2": p.Area,
			"color":    pq.Array(color),
			"shape":    p.Shape.String(),
		})
	}
	return insertBatched(db, "precincts", []string{"name", "area_km2", "color", "shape"}, values)
}

func PopulatePopulation(db *sqlx.DB, table *project_types.PopulationTable) error {
	values := []map[string]interface{}{}
	for _, rec := range table.Records {
		values = append(values, map[string]interface{}{
			"year":                   rec.Year,
			"precinct":               rec.PrecinctName,
			"total_households":       rec.TotalHouseholds,
			"average_household_size": rec.AverageHouseholdSize,
			"population":             rec.Population,
			"total_households_norm":  rec.TotalHouseholdsNorm,
			"gentrification_factor":  rec.GentrificationFactor,
		})
	}
	columns := []string{"year", "precinct", "total_households", "average_household_size",
		"population", "total_households_norm", "gentrification_factor"}
	return insertBatched(db, "population", columns, values)
}

func PopulateTiles(db *sqlx.DB, h3ToPrecinct project_types.H3ToPrecinct) error {
	values := []map[string]interface{}{}
	for h3, precinct := range h3ToPrecinct {
		values = append(values, map[string]interface{}{"h3": h3, "precinct": precinct})
	}
	return insertBatched(db, "precinct_tiles", []string{"h3", "precinct"}, values)
}
