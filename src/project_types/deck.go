package project_types

// Deck is a deck.gl JSON-converter document: "@@type" names a deck.gl class
// and "@@=" prefixes an accessor expression evaluated per datum.
type Deck struct {
	InitialViewState ViewState        `json:"initialViewState"`
	Layers           []PolygonLayer   `json:"layers"`
	Effects          []LightingEffect `json:"effects"`
	MapStyle         string           `json:"mapStyle"`
	Tooltip          Tooltip          `json:"tooltip"`
}

type PolygonLayer struct {
	Type         string       `json:"@@type"`
	ID           string       `json:"id"`
	Data         []LayerDatum `json:"data"`
	Stroked      bool         `json:"stroked"`
	Filled       bool         `json:"filled"`
	Extruded     bool         `json:"extruded"`
	Wireframe    bool         `json:"wireframe"`
	Pickable     bool         `json:"pickable"`
	GetPolygon   string       `json:"getPolygon"`
	GetFillColor string       `json:"getFillColor"`
	GetElevation string       `json:"getElevation"`
}

type LayerDatum struct {
	PrecinctName        string         `json:"precinct_name"`
	PrecinctArea        string         `json:"precinct_area"`
	PrecinctShape       [][][2]float64 `json:"precinct_shape"`
	Color               Color          `json:"color"`
	TotalHouseholds     float64        `json:"total_households"`
	Population          float64        `json:"population"`
	TotalHouseholdsNorm float64        `json:"total_households_norm"`
	Elevation           float64        `json:"elevation"`
}

type SunLight struct {
	Type      string  `json:"@@type"`
	Timestamp int64   `json:"timestamp"`
	Color     [3]int  `json:"color"`
	Intensity float64 `json:"intensity"`
	Shadow    bool    `json:"_shadow"`
}

type AmbientLight struct {
	Type      string  `json:"@@type"`
	Color     [3]int  `json:"color"`
	Intensity float64 `json:"intensity"`
}

type LightingEffect struct {
	Type              string       `json:"@@type"`
	ShadowColor       [4]float64   `json:"shadowColor"`
	AmbientLight      AmbientLight `json:"ambientLight"`
	DirectionalLights []SunLight   `json:"directionalLights"`
}

type Tooltip struct {
	HTML  string            `json:"html"`
	Style map[string]string `json:"style"`
}
