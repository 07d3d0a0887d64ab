package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mappichat/precinct-forecasts/src/engine"
	"github.com/mappichat/precinct-forecasts/src/fileio"
	"github.com/mappichat/precinct-forecasts/src/logging"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/utils"
	"go.uber.org/zap"
)

// usage: precinctPopmap <precinct-csv> <population-csv> <year> <resolution>
func main() {
	start := time.Now()
	if _, err := logging.Setup(false); err != nil {
		panic(err)
	}
	log := zap.S()
	if len(os.Args) < 5 {
		log.Fatal("usage: precinctPopmap [precinct-csv] [population-csv] [year] [resolution]")
	}
	year, err := strconv.Atoi(os.Args[3])
	if err != nil {
		log.Fatal(err)
	}
	res, err := strconv.Atoi(os.Args[4])
	if err != nil {
		log.Fatal(err)
	}

	log.Info("reading csvs")
	precincts, err := fileio.LoadRegionData(os.Args[1], 0)
	if err != nil {
		log.Fatal(err)
	}
	table, err := fileio.LoadPopulationData(os.Args[2], 0)
	if err != nil {
		log.Fatal(err)
	}
	rows, err := engine.Merge(precincts, table, year, 0)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("assigning precinct tiles at resolution %d", res)
	_, precinctToH3, err := engine.GeneratePrecinctMaps(precincts, res)
	if err != nil {
		log.Fatal(err)
	}
	popMap := engine.SpreadPopulation(rows, precinctToH3)

	log.Infof("%d tiles hold a population of %.0f", len(popMap), project_types.PopMapTotal(popMap))
	if err := utils.WriteAsJsonFile(popMap, fmt.Sprintf("./popmap%d.json", res)); err != nil {
		log.Fatal(err)
	}

	log.Infof("total time: %s", time.Since(start))
}
