package main

import (
	"os"
	"strconv"

	"github.com/mappichat/precinct-forecasts/src/fileio"
	"github.com/mappichat/precinct-forecasts/src/logging"
	"go.uber.org/zap"
)

// usage: countPop <population-csv> [year]
func main() {
	if _, err := logging.Setup(false); err != nil {
		panic(err)
	}
	log := zap.S()
	if len(os.Args) < 2 {
		log.Fatal("usage: countPop [population-csv] [year]")
	}

	table, err := fileio.LoadPopulationData(os.Args[1], 0)
	if err != nil {
		log.Fatal(err.Error())
	}

	years := table.Years()
	if len(os.Args) > 2 {
		year, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		years = []int{year}
	}

	for _, year := range years {
		pop, err := table.TotalPopulation(year)
		if err != nil {
			log.Fatalf("%d: %v", year, err)
		}
		log.Infof("total population in %d: %.0f", year, pop)
	}
}
