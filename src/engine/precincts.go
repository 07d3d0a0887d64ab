package engine

import (
	"github.com/mappichat/precinct-forecasts/src/project_types"
	h3 "github.com/uber/h3-go/v3"
	"go.uber.org/zap"
)

// GeneratePrecinctMaps assigns H3 tiles to precincts by polyfilling their
// shapes. A tile claimed by two precincts stays with the earlier one.
func GeneratePrecinctMaps(precincts []project_types.Precinct, resolution int) (project_types.H3ToPrecinct, project_types.PrecinctToH3, error) {
	h3ToPrecinct := project_types.H3ToPrecinct{}
	precinctToH3 := project_types.PrecinctToH3{}
	polygons := project_types.PrecinctPolygons{}

	zap.S().Debug("assigning tiles to precincts")
	for _, precinct := range precincts {
		polygon, err := precinct.Shape.GeoPolygon()
		if err != nil {
			return nil, nil, err
		}
		polygons[precinct.Name] = polygon
		tiles := []string{}
		for _, h := range h3.Polyfill(polygon, resolution) {
			tile := h3.ToString(h)
			if _, ok := h3ToPrecinct[tile]; ok {
				continue
			}
			tiles = append(tiles, tile)
			h3ToPrecinct[tile] = precinct.Name
		}
		precinctToH3[precinct.Name] = tiles
	}

	// give precincts smaller than a tile the tiles under their vertices
	for _, precinct := range precincts {
		if len(precinctToH3[precinct.Name]) > 0 {
			continue
		}
		for _, coord := range polygons[precinct.Name].Geofence {
			tile := h3.ToString(h3.FromGeo(coord, resolution))
			if _, ok := h3ToPrecinct[tile]; !ok {
				h3ToPrecinct[tile] = precinct.Name
				precinctToH3[precinct.Name] = append(precinctToH3[precinct.Name], tile)
			}
		}
		if len(precinctToH3[precinct.Name]) == 0 {
			zap.S().Warnf("precinct %s has no tiles at resolution %d", precinct.Name, resolution)
		}
	}

	return h3ToPrecinct, precinctToH3, nil
}

func PrecinctCentroid(tiles []string) h3.GeoCoord {
	latsum := 0.0
	lonsum := 0.0
	for i := range tiles {
		h := h3.ToGeo(h3.FromString(tiles[i]))
		latsum += h.Latitude
		lonsum += h.Longitude
	}
	n := len(tiles)
	if n == 0 {
		return h3.GeoCoord{}
	}
	return h3.GeoCoord{Latitude: latsum / float64(n), Longitude: lonsum / float64(n)}
}

// SpreadPopulation divides each row's population evenly over its precinct's tiles.
func SpreadPopulation(rows []project_types.MergedRow, precinctToH3 project_types.PrecinctToH3) project_types.PopMap {
	popMap := project_types.PopMap{}
	for _, row := range rows {
		tiles := precinctToH3[row.PrecinctName]
		if len(tiles) == 0 {
			continue
		}
		share := row.Population / float64(len(tiles))
		for _, tile := range tiles {
			popMap[tile] += share
		}
	}
	return popMap
}
