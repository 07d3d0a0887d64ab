package fileio

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
)

// LoadOptions reads a json or yaml options file over the defaults.
func LoadOptions(filePath string) (project_types.Options, error) {
	options := utils.DefaultOptions()
	ext := strings.ToLower(path.Ext(filePath))
	if ext == ".yaml" || ext == ".yml" {
		bytes, err := os.ReadFile(filePath)
		if err != nil {
			return options, err
		}
		if err := yaml.Unmarshal(bytes, &options); err != nil {
			return options, fmt.Errorf("parsing %s: %w", filePath, err)
		}
		return options, nil
	}
	if err := utils.ReadJsonFile(filePath, &options); err != nil {
		return options, err
	}
	return options, nil
}

func DeckFileName(year int, scenario string) string {
	return fmt.Sprintf("deck-%d-%s.json", year, scenario)
}

func WriteDeck(deck project_types.Deck, dirName string, year int, scenario string) error {
	return utils.WriteAsJsonFile(deck, path.Join(dirName, DeckFileName(year, scenario)))
}

func WritePrecinctMaps(h3ToPrecinct project_types.H3ToPrecinct, precinctToH3 project_types.PrecinctToH3, dirName string) error {
	wg := sync.WaitGroup{}
	wg.Add(2)
	errs := [2]error{}
	go func() {
		errs[0] = utils.WriteAsJsonFile(h3ToPrecinct, path.Join(dirName, "h3ToPrecinct.json"))
		wg.Done()
	}()
	go func() {
		errs[1] = utils.WriteAsJsonFile(precinctToH3, path.Join(dirName, "precinctToH3.json"))
		wg.Done()
	}()
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func ReadPrecinctMaps(dirName string) (project_types.H3ToPrecinct, project_types.PrecinctToH3, error) {
	h3ToPrecinct := project_types.H3ToPrecinct{}
	if err := utils.ReadJsonFile(path.Join(dirName, "h3ToPrecinct.json"), &h3ToPrecinct); err != nil {
		return nil, nil, err
	}
	precinctToH3 := project_types.PrecinctToH3{}
	if err := utils.ReadJsonFile(path.Join(dirName, "precinctToH3.json"), &precinctToH3); err != nil {
		return nil, nil, err
	}
	return h3ToPrecinct, precinctToH3, nil
}
