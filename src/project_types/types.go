package project_types

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v3"
)

var (
	ErrYearNotFound           = errors.New("year not found in population data")
	ErrUnknownScenario        = errors.New("unknown gentrification scenario")
	ErrNoGentrificationFactor = errors.New("population data has no gentrification factor column")
)

// Point is an (x, y) pair; for precinct shapes x is longitude and y latitude.
type Point [2]float64

type Ring []Point

type Shape []Ring

// String is the canonical serialization read back by fileio.ParseShape:
// points joined by ", ", rings joined by "; ".
func (s Shape) String() string {
	var b strings.Builder
	for i, ring := range s {
		if i > 0 {
			b.WriteString("; ")
		}
		for j, p := range ring {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(p[0], 'g', -1, 64))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p[1], 'g', -1, 64))
		}
	}
	return b.String()
}

func (s Shape) PointCount() int {
	n := 0
	for _, ring := range s {
		n += len(ring)
	}
	return n
}

// GeoPolygon treats the first ring as the fence and the rest as holes.
func (s Shape) GeoPolygon() (h3.GeoPolygon, error) {
	if len(s) == 0 {
		return h3.GeoPolygon{}, errors.New("shape empty")
	}
	toCoords := func(ring Ring) []h3.GeoCoord {
		coords := make([]h3.GeoCoord, 0, len(ring))
		for _, p := range ring {
			coords = append(coords, h3.GeoCoord{Latitude: p[1], Longitude: p[0]})
		}
		return coords
	}
	holes := [][]h3.GeoCoord{}
	for _, ring := range s[1:] {
		holes = append(holes, toCoords(ring))
	}
	return h3.GeoPolygon{Geofence: toCoords(s[0]), Holes: holes}, nil
}

type Color [4]int

// RegionColours is the fixed precinct palette, assigned cyclically in row order.
var RegionColours = [13]Color{
	{0, 66, 157, 242},
	{36, 81, 164, 242},
	{55, 97, 171, 242},
	{71, 113, 178, 242},
	{86, 129, 185, 242},
	{100, 146, 192, 242},
	{115, 162, 198, 242},
	{130, 179, 205, 242},
	{147, 196, 210, 242},
	{165, 213, 216, 242},
	{185, 229, 221, 242},
	{211, 244, 224, 242},
	{255, 255, 224, 242},
}

func PaletteColor(row int) Color {
	return RegionColours[row%len(RegionColours)]
}

type Precinct struct {
	Name  string `json:"precinct_name"`
	Shape Shape  `json:"precinct_shape"`
	// Area in km², formatted to 3 significant figures for display.
	Area  string `json:"precinct_area"`
	Color Color  `json:"color"`
}

type PopulationRecord struct {
	Year                 int     `json:"year"`
	PrecinctName         string  `json:"precinct_name"`
	TotalHouseholds      float64 `json:"total_households"`
	AverageHouseholdSize float64 `json:"average_household_size"`
	Population           float64 `json:"population"`
	TotalHouseholdsNorm  float64 `json:"total_households_norm"`
	GentrificationFactor float64 `json:"gentrification_factor"`
}

// PopulationTable holds every loaded record plus a year index into it.
type PopulationTable struct {
	Records                 []PopulationRecord
	HasGentrificationFactor bool
	byYear                  map[int][]int
	years                   []int
}

func NewPopulationTable(records []PopulationRecord, hasFactor bool) *PopulationTable {
	t := &PopulationTable{
		Records:                 records,
		HasGentrificationFactor: hasFactor,
		byYear:                  map[int][]int{},
	}
	for i, rec := range records {
		if _, ok := t.byYear[rec.Year]; !ok {
			t.years = append(t.years, rec.Year)
		}
		t.byYear[rec.Year] = append(t.byYear[rec.Year], i)
	}
	sort.Ints(t.years)
	return t
}

// Year returns copies of every record for year, in file order.
func (t *PopulationTable) Year(year int) ([]PopulationRecord, error) {
	indices, ok := t.byYear[year]
	if !ok {
		return nil, ErrYearNotFound
	}
	out := make([]PopulationRecord, len(indices))
	for i, idx := range indices {
		out[i] = t.Records[idx]
	}
	return out, nil
}

func (t *PopulationTable) Years() []int {
	return append([]int(nil), t.years...)
}

func (t *PopulationTable) TotalPopulation(year int) (float64, error) {
	records, err := t.Year(year)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, rec := range records {
		sum += rec.Population
	}
	return sum, nil
}

type MergedRow struct {
	PrecinctName         string  `json:"precinct_name"`
	PrecinctShape        Shape   `json:"precinct_shape"`
	PrecinctArea         string  `json:"precinct_area"`
	Color                Color   `json:"color"`
	Year                 int     `json:"year"`
	TotalHouseholds      float64 `json:"total_households"`
	AverageHouseholdSize float64 `json:"average_household_size"`
	Population           float64 `json:"population"`
	TotalHouseholdsNorm  float64 `json:"total_households_norm"`
	GentrificationFactor float64 `json:"gentrification_factor"`
}

type Scenario struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Level float64 `json:"level"`
}

type PrecinctPolygons map[string]h3.GeoPolygon
type H3ToPrecinct map[string]string
type PrecinctToH3 map[string][]string

type PopMap map[string]float64

func PopMapTotal(popMap PopMap) float64 {
	sum := 0.0
	for _, pop := range popMap {
		sum += pop
	}
	return sum
}
