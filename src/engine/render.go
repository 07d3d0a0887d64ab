package engine

import (
	"github.com/mappichat/precinct-forecasts/src/project_types"
)

const (
	BaseElevation  = 1000.0
	ElevationScale = 5000.0

	// 2019-08-01 22:00 UTC
	sunTimestamp = 1564696800000

	TooltipHTML = "<b>Precinct:</b> {precinct_name}" +
		"<br><b>Area:</b> {precinct_area} km<sup>2</sup>" +
		"<br><b>Households:</b> {total_households}" +
		"<br><b>Population:</b> {population}"
)

func Elevation(norm float64) float64 {
	return BaseElevation + norm*ElevationScale
}

func Lighting() project_types.LightingEffect {
	white := [3]int{255, 255, 255}
	return project_types.LightingEffect{
		Type:        "LightingEffect",
		ShadowColor: [4]float64{0, 0, 0, 0.5},
		AmbientLight: project_types.AmbientLight{
			Type:      "AmbientLight",
			Color:     white,
			Intensity: 1.0,
		},
		DirectionalLights: []project_types.SunLight{{
			Type:      "_SunLight",
			Timestamp: sunTimestamp,
			Color:     white,
			Intensity: 1.0,
			Shadow:    true,
		}},
	}
}

// BuildDeck turns merged rows into a single extruded polygon layer with the
// configured camera, fixed lighting and the precinct tooltip.
func BuildDeck(rows []project_types.MergedRow, options project_types.Options) project_types.Deck {
	data := make([]project_types.LayerDatum, 0, len(rows))
	for _, row := range rows {
		polygon := make([][][2]float64, len(row.PrecinctShape))
		for i, ring := range row.PrecinctShape {
			polygon[i] = make([][2]float64, len(ring))
			for j, p := range ring {
				polygon[i][j] = p
			}
		}
		data = append(data, project_types.LayerDatum{
			PrecinctName:        row.PrecinctName,
			PrecinctArea:        row.PrecinctArea,
			PrecinctShape:       polygon,
			Color:               row.Color,
			TotalHouseholds:     row.TotalHouseholds,
			Population:          row.Population,
			TotalHouseholdsNorm: row.TotalHouseholdsNorm,
			Elevation:           Elevation(row.TotalHouseholdsNorm),
		})
	}

	layer := project_types.PolygonLayer{
		Type:         "SolidPolygonLayer",
		ID:           "region",
		Data:         data,
		Stroked:      false,
		Filled:       true,
		Extruded:     true,
		Wireframe:    false,
		Pickable:     true,
		GetPolygon:   "@@=precinct_shape",
		GetFillColor: "@@=color",
		GetElevation: "@@=elevation",
	}

	return project_types.Deck{
		InitialViewState: options.View,
		Layers:           []project_types.PolygonLayer{layer},
		Effects:          []project_types.LightingEffect{Lighting()},
		MapStyle:         options.MapStyle,
		Tooltip: project_types.Tooltip{
			HTML:  TooltipHTML,
			Style: map[string]string{"color": "white"},
		},
	}
}
