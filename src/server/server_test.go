package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mappichat/precinct-forecasts/src/engine"
	"github.com/mappichat/precinct-forecasts/src/fileio"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	h3 "github.com/uber/h3-go/v3"
)

const testRegions = `the_geom,FEATURENAM,SHAPE_AREA,SHAPE_LEN
"144.95 -37.80, 144.97 -37.80, 144.97 -37.78, 144.95 -37.78",Carlton,1810000,5400
"144.93 -37.82, 144.95 -37.82, 144.95 -37.80, 144.93 -37.80",Docklands,2468000,7000
`

const testPopulation = `Year,Geography,Total households,Average Household Size,Gentrification Factor
2016,Carlton,1000,2,0.1
2016,Docklands,3000,1.5,0.3
2021,Carlton,2000,2.5,0.1
2021,Docklands,5000,1.75,0.3
2041,Carlton,400,2.5,0.2
2041,Docklands,4000,2,0.3
`

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	options := utils.DefaultOptions()
	options.RegionDataPath = filepath.Join(dir, "regions.csv")
	options.PopulationDataPath = filepath.Join(dir, "population.csv")
	require.NoError(t, os.WriteFile(options.RegionDataPath, []byte(testRegions), 0644))
	require.NoError(t, os.WriteFile(options.PopulationDataPath, []byte(testPopulation), 0644))

	return &Server{
		Dashboard:    engine.NewDashboard(fileio.NewLoader(), options),
		H3ToPrecinct: project_types.H3ToPrecinct{"89be6356c2bffff": "Carlton"},
		PrecinctToH3: project_types.PrecinctToH3{"Carlton": {"89be6356c2bffff"}},
	}
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	return do(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func post(t *testing.T, app *fiber.App, target, body string) (int, []byte) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return do(t, app, req)
}

func TestHealth(t *testing.T) {
	app := testServer(t).App()
	status, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Healthy", string(body))
}

func TestDashboardPage(t *testing.T) {
	app := testServer(t).App()
	status, body := get(t, app, "/dashboard")
	assert.Equal(t, http.StatusOK, status)
	page := string(body)
	assert.Contains(t, page, "Year to inspect")
	assert.Contains(t, page, "City of Melbourne Population Forecasts")
	for _, s := range engine.Scenarios {
		assert.Contains(t, page, s.Label)
	}
}

func TestOptions(t *testing.T) {
	app := testServer(t).App()
	status, body := get(t, app, "/api/options")
	require.Equal(t, http.StatusOK, status)

	var got struct {
		MinYear         int                      `json:"minYear"`
		MaxYear         int                      `json:"maxYear"`
		DefaultYear     int                      `json:"defaultYear"`
		DefaultScenario string                   `json:"defaultScenario"`
		Scenarios       []project_types.Scenario `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 2016, got.MinYear)
	assert.Equal(t, 2041, got.MaxYear)
	assert.Equal(t, 2021, got.DefaultYear)
	assert.Equal(t, "low", got.DefaultScenario)
	assert.Equal(t, engine.Scenarios, got.Scenarios)
}

func TestDeck(t *testing.T) {
	app := testServer(t).App()

	status, body := get(t, app, "/api/deck?year=2041&scenario=high")
	require.Equal(t, http.StatusOK, status, string(body))
	var deck project_types.Deck
	require.NoError(t, json.Unmarshal(body, &deck))
	require.Len(t, deck.Layers, 1)
	require.Len(t, deck.Layers[0].Data, 2)
	assert.InDelta(t, 1200.0, deck.Layers[0].Data[0].Population, 1e-9)

	// defaults apply when the query is empty
	status, body = get(t, app, "/api/deck")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &deck))
	assert.Equal(t, 5000.0, deck.Layers[0].Data[0].Population)
}

func TestDeck_Errors(t *testing.T) {
	app := testServer(t).App()

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"year without data", "/api/deck?year=2030", http.StatusNotFound, "2030"},
		{"year out of range", "/api/deck?year=1999", http.StatusBadRequest, "between 2016 and 2041"},
		{"year not a number", "/api/deck?year=soon", http.StatusBadRequest, "integer"},
		{"unknown scenario", "/api/deck?scenario=extreme", http.StatusBadRequest, "extreme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, app, tt.target)
			assert.Equal(t, tt.status, status)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Contains(t, payload["error"], tt.want)
		})
	}
}

func TestScenario(t *testing.T) {
	app := testServer(t).App()

	status, body := post(t, app, "/api/scenario", `{"year": 2041, "scenario": "high"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var rows []project_types.MergedRow
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Carlton", rows[0].PrecinctName)
	assert.InDelta(t, 1200.0, rows[0].Population, 1e-9)

	status, _ = post(t, app, "/api/scenario", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, app, "/api/scenario", `{"year": 2050, "scenario": "low"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, app, "/api/scenario", `{"year": 2021, "scenario": "extreme"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestScenario_NoGentrificationFactor(t *testing.T) {
	s := testServer(t)
	options := s.Dashboard.Options()
	noFactor := "Year,Geography,Total households,Average Household Size\n2021,Carlton,2000,2.5\n"
	require.NoError(t, os.WriteFile(options.PopulationDataPath, []byte(noFactor), 0644))
	app := s.App()

	status, _ := post(t, app, "/api/scenario", `{"year": 2021, "scenario": "medium"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = post(t, app, "/api/scenario", `{"year": 2021, "scenario": "low"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestRaw(t *testing.T) {
	app := testServer(t).App()

	status, body := get(t, app, "/api/raw?year=2021")
	require.Equal(t, http.StatusOK, status, string(body))

	var raw map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Len(t, raw["precincts"], 2)
	assert.Len(t, raw["population"], 6)
	assert.Len(t, raw["year_population"], 2)
	require.Len(t, raw["merged"], 2)
	assert.Equal(t, "Carlton", raw["merged"][0]["precinct_name"])
	assert.Contains(t, raw["merged"][0], "total_households_norm")
}

func TestPrecinct(t *testing.T) {
	app := testServer(t).App()

	status, body := post(t, app, "/precinct", `{"tile": "89be6356c2bffff"}`)
	require.Equal(t, http.StatusOK, status)
	var got struct {
		Precinct string   `json:"precinct"`
		Tiles    []string `json:"tiles"`
		Centroid struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"centroid"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Carlton", got.Precinct)
	assert.Equal(t, []string{"89be6356c2bffff"}, got.Tiles)

	// a single-tile precinct is centred on that tile
	centre := h3.ToGeo(h3.FromString("89be6356c2bffff"))
	assert.InDelta(t, centre.Latitude, got.Centroid.Lat, 1e-9)
	assert.InDelta(t, centre.Longitude, got.Centroid.Lng, 1e-9)

	status, _ = post(t, app, "/precinct", `{"tile": "89be6356c23ffff"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post(t, app, "/precinct", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRequireJWT(t *testing.T) {
	secret := []byte("test-secret")
	s := testServer(t)
	s.Keyfunc = func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}
	app := s.App()

	status, _ := get(t, app, "/api/options")
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.token")
	status, _ = do(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, status)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "viewer"}).SignedString(secret)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)
	status, _ = do(t, app, req)
	assert.Equal(t, http.StatusOK, status)

	// the health check and page stay public
	status, _ = get(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	status, _ = get(t, app, "/dashboard")
	assert.Equal(t, http.StatusOK, status)
}

func TestDeckCache_NilClient(t *testing.T) {
	cache := newDeckCache(nil, 0)
	cache.set(context.Background(), "key", project_types.Deck{})
	_, ok := cache.get(context.Background(), "key")
	assert.False(t, ok)
}

func TestDeckKey(t *testing.T) {
	options := utils.DefaultOptions()
	key := deckKey(options, 0, 2021, "low")
	assert.True(t, strings.HasPrefix(key, "precinct-forecasts:deck:"))
	assert.True(t, strings.HasSuffix(key, ":0:15000:2021:low"))
	assert.Equal(t, key, deckKey(options, 0, 2021, "low"))

	other := options
	other.PopulationDataPath = "other-forecasts.csv"
	assert.NotEqual(t, key, deckKey(other, 0, 2021, "low"))

	other = options
	other.RegionDataPath = "other-regions.csv"
	assert.NotEqual(t, key, deckKey(other, 0, 2021, "low"))

	assert.NotEqual(t, key, deckKey(options, 1, 2021, "low"))
	assert.NotEqual(t, key, deckKey(options, 0, 2021, "high"))
}
