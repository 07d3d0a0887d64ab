package fileio

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
)

var populationColumns = map[string]string{
	"geography": "precinct_name",
}

func LoadPopulationData(source string, nrows int) (*project_types.PopulationTable, error) {
	r, err := utils.OpenSource(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadPopulationData(r, nrows)
}

func ReadPopulationData(r io.Reader, nrows int) (*project_types.PopulationTable, error) {
	t, err := readTable(r, nrows)
	if err != nil {
		return nil, fmt.Errorf("reading population csv: %w", err)
	}

	t.rename(populationColumns)
	if err := t.require("year", "precinct_name", "total_households", "average_household_size"); err != nil {
		return nil, err
	}
	hasFactor := t.has("gentrification_factor")

	number := func(row []string, i int, name string) (float64, error) {
		v, err := strconv.ParseFloat(t.get(row, name), 64)
		if err != nil {
			return 0, fmt.Errorf("population csv line %d: bad %s: %w", t.lines[i], name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("population csv line %d: bad %s: not a finite number", t.lines[i], name)
		}
		return v, nil
	}

	records := make([]project_types.PopulationRecord, 0, len(t.rows))
	thMin := math.Inf(1)
	thMax := math.Inf(-1)
	for i, row := range t.rows {
		// years exported as floats ("2016.0") are accepted when whole
		yearValue, err := number(row, i, "year")
		if err != nil {
			return nil, err
		}
		if yearValue != math.Trunc(yearValue) {
			return nil, fmt.Errorf("population csv line %d: bad year: %s is not a whole year", t.lines[i], t.get(row, "year"))
		}
		year := int(yearValue)
		households, err := number(row, i, "total_households")
		if err != nil {
			return nil, err
		}
		size, err := number(row, i, "average_household_size")
		if err != nil {
			return nil, err
		}
		factor := 0.0
		if hasFactor {
			if factor, err = number(row, i, "gentrification_factor"); err != nil {
				return nil, err
			}
		}

		thMin = math.Min(thMin, households)
		thMax = math.Max(thMax, households)
		records = append(records, project_types.PopulationRecord{
			Year:                 year,
			PrecinctName:         t.get(row, "precinct_name"),
			TotalHouseholds:      households,
			AverageHouseholdSize: size,
			Population:           math.RoundToEven(households * size),
			GentrificationFactor: factor,
		})
	}

	// normalization needs the global range, so it runs after every row is read
	for i := range records {
		records[i].TotalHouseholdsNorm = Normalize(records[i].TotalHouseholds, thMin, thMax)
	}

	return project_types.NewPopulationTable(records, hasFactor), nil
}

// Normalize min-max scales v; a degenerate range maps everything to 0.
func Normalize(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}
