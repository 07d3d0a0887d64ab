package project_types

type ViewState struct {
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"min=-180,max=180"`
	Zoom      float64 `json:"zoom" yaml:"zoom" validate:"min=0,max=24"`
	Pitch     float64 `json:"pitch" yaml:"pitch" validate:"min=0,max=85"`
	Bearing   float64 `json:"bearing" yaml:"bearing"`
}

type RedisOptions struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db" validate:"min=0"`
	// TTLSeconds of cached deck documents; 0 keeps them until the key is evicted.
	TTLSeconds int `json:"ttlSeconds" yaml:"ttlSeconds" validate:"min=0"`
}

type Options struct {
	RegionDataPath     string       `json:"regionDataPath" yaml:"regionDataPath" validate:"required"`
	PopulationDataPath string       `json:"populationDataPath" yaml:"populationDataPath" validate:"required"`
	MaxRows            int          `json:"maxRows" yaml:"maxRows" validate:"min=1"`
	MinYear            int          `json:"minYear" yaml:"minYear" validate:"required"`
	MaxYear            int          `json:"maxYear" yaml:"maxYear" validate:"required,gtefield=MinYear"`
	DefaultYear        int          `json:"defaultYear" yaml:"defaultYear" validate:"required,gtefield=MinYear,ltefield=MaxYear"`
	DefaultScenario    string       `json:"defaultScenario" yaml:"defaultScenario" validate:"required"`
	H3Resolution       int          `json:"h3Resolution" yaml:"h3Resolution" validate:"min=0,max=15"`
	MapStyle           string       `json:"mapStyle" yaml:"mapStyle"`
	View               ViewState    `json:"view" yaml:"view"`
	Port               int          `json:"port" yaml:"port" validate:"min=1,max=65535"`
	JWKSURL            string       `json:"jwksUrl" yaml:"jwksUrl" validate:"omitempty,url"`
	Redis              RedisOptions `json:"redis" yaml:"redis"`
	DatabaseURL        string       `json:"databaseUrl" yaml:"databaseUrl"`
}
