package utils

import (
	"github.com/go-playground/validator"
	"github.com/mappichat/precinct-forecasts/src/project_types"
)

const (
	RegionDataPath     = "./Census_of_Land_Use_and_Employment__CLUE__Suburb _mod01.csv"
	PopulationDataPath = "./City_of_Melbourne_Population_Forecasts_2016_to_2041_-_Household_Types_mod00.csv"
)

func DefaultOptions() project_types.Options {
	return project_types.Options{
		RegionDataPath:     RegionDataPath,
		PopulationDataPath: PopulationDataPath,
		MaxRows:            15000,
		MinYear:            2016,
		MaxYear:            2041,
		DefaultYear:        2021,
		DefaultScenario:    "low",
		H3Resolution:       9,
		MapStyle:           "mapbox://styles/mapbox/light-v9",
		View: project_types.ViewState{
			Latitude:  -37.788837515833784,
			Longitude: 144.936867787351,
			Zoom:      11,
			Pitch:     50,
		},
		Port: 8080,
		Redis: project_types.RedisOptions{
			TTLSeconds: 3600,
		},
	}
}

var validate = validator.New()

func ValidateOptions(options project_types.Options) error {
	return validate.Struct(options)
}
