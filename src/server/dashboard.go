package server

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/mappichat/precinct-forecasts/src/engine"
	"github.com/mappichat/precinct-forecasts/src/project_types"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

type dashboardPage struct {
	Title           string
	MinYear         int
	MaxYear         int
	DefaultYear     int
	DefaultScenario string
	Scenarios       []project_types.Scenario
	TooltipHTML     string
}

func renderDashboard(c *fiber.Ctx, options project_types.Options) error {
	defaultScenario, err := engine.ScenarioByName(options.DefaultScenario)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	err = dashboardTemplate.Execute(&buf, dashboardPage{
		Title:           "City of Melbourne Population Forecasts",
		MinYear:         options.MinYear,
		MaxYear:         options.MaxYear,
		DefaultYear:     options.DefaultYear,
		DefaultScenario: defaultScenario.Key,
		Scenarios:       engine.Scenarios,
		TooltipHTML:     engine.TooltipHTML,
	})
	if err != nil {
		return err
	}
	return c.Send(buf.Bytes())
}
