package fileio

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
	"go.uber.org/zap"
)

var regionColumns = map[string]string{
	"the_geom":   "precinct_shape",
	"featurenam": "precinct_name",
	"shape_area": "precinct_area",
}

// FormatArea converts square metres to square kilometres at 3 significant figures.
func FormatArea(squareMetres float64) string {
	return strconv.FormatFloat(squareMetres/1000000, 'g', 3, 64)
}

// source can be a file path or an http(s) url
func LoadRegionData(source string, nrows int) ([]project_types.Precinct, error) {
	r, err := utils.OpenSource(source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadRegionData(r, nrows)
}

func ReadRegionData(r io.Reader, nrows int) ([]project_types.Precinct, error) {
	t, err := readTable(r, nrows)
	if err != nil {
		return nil, fmt.Errorf("reading precinct csv: %w", err)
	}

	t.dropIncomplete()
	t.rename(regionColumns)
	t.drop("shape_len")
	if err := t.require("precinct_shape", "precinct_name", "precinct_area"); err != nil {
		return nil, err
	}

	precincts := make([]project_types.Precinct, 0, len(t.rows))
	for i, row := range t.rows {
		shape, err := ParseShape(t.get(row, "precinct_shape"))
		if err != nil {
			return nil, fmt.Errorf("precinct csv line %d: %w", t.lines[i], err)
		}
		area, err := strconv.ParseFloat(t.get(row, "precinct_area"), 64)
		if err != nil {
			return nil, fmt.Errorf("precinct csv line %d: bad area: %w", t.lines[i], err)
		}
		zap.S().Debugf("precinct %s: %d rings, %d points", t.get(row, "precinct_name"), len(shape), shape.PointCount())
		precincts = append(precincts, project_types.Precinct{
			Name:  t.get(row, "precinct_name"),
			Shape: shape,
			Area:  FormatArea(area),
			Color: project_types.PaletteColor(i),
		})
	}
	return precincts, nil
}
