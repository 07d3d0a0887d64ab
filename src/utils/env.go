package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"go.uber.org/zap"
)

// ConfigureEnv loads .env files that exist; variables already set win.
func ConfigureEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		if !FileExists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			zap.S().Warnf("could not load %s: %v", f, err)
		}
	}
}

// ApplyEnv overrides options with DASH_*, REDIS_* and DATABASE_URL variables.
func ApplyEnv(options *project_types.Options) {
	str := func(name string, dest *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dest = v
		}
	}
	num := func(name string, dest *int) {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			zap.S().Warnf("ignoring %s=%q: %v", name, v, err)
			return
		}
		*dest = n
	}

	str("DASH_REGION_DATA", &options.RegionDataPath)
	str("DASH_POPULATION_DATA", &options.PopulationDataPath)
	num("DASH_MAX_ROWS", &options.MaxRows)
	num("DASH_DEFAULT_YEAR", &options.DefaultYear)
	str("DASH_DEFAULT_SCENARIO", &options.DefaultScenario)
	num("DASH_H3_RESOLUTION", &options.H3Resolution)
	str("DASH_MAP_STYLE", &options.MapStyle)
	num("DASH_PORT", &options.Port)
	str("DASH_JWKS_URL", &options.JWKSURL)
	str("REDIS_ADDR", &options.Redis.Addr)
	str("REDIS_PASS", &options.Redis.Password)
	num("REDIS_DB", &options.Redis.DB)
	num("REDIS_TTL_SECONDS", &options.Redis.TTLSeconds)
	str("DATABASE_URL", &options.DatabaseURL)
}
