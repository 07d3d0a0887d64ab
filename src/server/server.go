package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mappichat/precinct-forecasts/src/engine"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var validate = validator.New()

type Server struct {
	Dashboard    *engine.Dashboard
	H3ToPrecinct project_types.H3ToPrecinct
	PrecinctToH3 project_types.PrecinctToH3
	// Redis caches rendered decks when set.
	Redis *redis.Client
	// Keyfunc enables bearer JWT checks on /api when set.
	Keyfunc jwt.Keyfunc
}

func (s *Server) App() *fiber.App {
	options := s.Dashboard.Options()
	cache := newDeckCache(s.Redis, time.Duration(options.Redis.TTLSeconds)*time.Second)

	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(requestLogger)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Healthy")
	})

	app.Get("/dashboard", func(c *fiber.Ctx) error {
		c.Type("html")
		return renderDashboard(c, options)
	})

	api := app.Group("/api")
	if s.Keyfunc != nil {
		api.Use(requireJWT(s.Keyfunc))
	}

	api.Get("/options", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"minYear":         options.MinYear,
			"maxYear":         options.MaxYear,
			"defaultYear":     options.DefaultYear,
			"defaultScenario": options.DefaultScenario,
			"scenarios":       engine.Scenarios,
		})
	})

	api.Get("/deck", func(c *fiber.Ctx) error {
		year, scenario, err := s.selection(c)
		if err != nil {
			return err
		}

		key := deckKey(options, s.Dashboard.Loader().Generation(), year, scenario.Key)
		if cached, ok := cache.get(c.UserContext(), key); ok {
			c.Type("json")
			return c.Send(cached)
		}

		deck, err := s.Dashboard.Deck(year, scenario.Key)
		if err != nil {
			return err
		}
		cache.set(c.UserContext(), key, deck)
		return c.JSON(deck)
	})

	api.Post("/scenario", func(c *fiber.Ctx) error {
		payload := struct {
			Year     int    `json:"year" validate:"required"`
			Scenario string `json:"scenario" validate:"required"`
		}{}

		if err := c.BodyParser(&payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := checkYear(payload.Year, options); err != nil {
			return err
		}

		rows, err := s.Dashboard.Scenario(payload.Year, payload.Scenario)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	})

	api.Get("/raw", func(c *fiber.Ctx) error {
		year, scenario, err := s.selection(c)
		if err != nil {
			return err
		}
		return s.rawData(c, year, scenario.Key)
	})

	app.Post("/precinct", func(c *fiber.Ctx) error {
		payload := struct {
			Tile string `json:"tile" validate:"required"`
		}{}

		if err := c.BodyParser(&payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		name, ok := s.H3ToPrecinct[payload.Tile]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "tile is not inside any precinct")
		}
		tiles := s.PrecinctToH3[name]
		centroid := engine.PrecinctCentroid(tiles)
		return c.JSON(fiber.Map{
			"precinct": name,
			"tiles":    tiles,
			"centroid": fiber.Map{"lat": centroid.Latitude, "lng": centroid.Longitude},
		})
	})

	return app
}

func RunServer(s *Server, port int) error {
	zap.S().Infof("serving dashboard on :%d", port)
	return s.App().Listen(fmt.Sprintf(":%d", port))
}

// selection reads the year and scenario query parameters, falling back to
// the configured defaults.
func (s *Server) selection(c *fiber.Ctx) (int, project_types.Scenario, error) {
	options := s.Dashboard.Options()

	year := options.DefaultYear
	if raw := c.Query("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, project_types.Scenario{}, fiber.NewError(fiber.StatusBadRequest, "year must be an integer")
		}
		year = n
	}
	if err := checkYear(year, options); err != nil {
		return 0, project_types.Scenario{}, err
	}

	scenario, err := engine.ScenarioByName(c.Query("scenario", options.DefaultScenario))
	if err != nil {
		return 0, project_types.Scenario{}, err
	}
	return year, scenario, nil
}

// deckKey names a cached deck; the data sources are hashed in so deployments
// sharing one redis never read each other's decks.
func deckKey(options project_types.Options, generation, year int, scenario string) string {
	sources := sha256.Sum256([]byte(options.RegionDataPath + "\x00" + options.PopulationDataPath))
	return fmt.Sprintf("precinct-forecasts:deck:%s:%d:%d:%d:%s",
		hex.EncodeToString(sources[:8]), generation, options.MaxRows, year, scenario)
}

func checkYear(year int, options project_types.Options) error {
	if year < options.MinYear || year > options.MaxYear {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("year must be between %d and %d", options.MinYear, options.MaxYear))
	}
	return nil
}

func (s *Server) rawData(c *fiber.Ctx, year int, scenario string) error {
	precincts, err := s.Dashboard.Precincts()
	if err != nil {
		return err
	}
	table, err := s.Dashboard.Population()
	if err != nil {
		return err
	}
	yearRecords, err := table.Year(year)
	if err != nil {
		return fmt.Errorf("%w: %d", err, year)
	}
	merged, err := s.Dashboard.Scenario(year, scenario)
	if err != nil {
		return err
	}

	out := fiber.Map{}
	if out["precincts"], err = utils.DecodeSnakeCaseSlice(precincts); err != nil {
		return err
	}
	if out["population"], err = utils.DecodeSnakeCaseSlice(table.Records); err != nil {
		return err
	}
	if out["year_population"], err = utils.DecodeSnakeCaseSlice(yearRecords); err != nil {
		return err
	}
	if out["merged"], err = utils.DecodeSnakeCaseSlice(merged); err != nil {
		return err
	}
	return c.JSON(out)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.Is(err, project_types.ErrYearNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, project_types.ErrUnknownScenario):
		code = fiber.StatusBadRequest
	case errors.Is(err, project_types.ErrNoGentrificationFactor):
		code = fiber.StatusUnprocessableEntity
	}
	if code >= fiber.StatusInternalServerError {
		zap.S().Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	zap.S().Infow("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
		"error", err,
	)
	return err
}
