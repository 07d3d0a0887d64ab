package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mappichat/precinct-forecasts/src/database"
	"github.com/mappichat/precinct-forecasts/src/engine"
	"github.com/mappichat/precinct-forecasts/src/fileio"
	"github.com/mappichat/precinct-forecasts/src/logging"
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/mappichat/precinct-forecasts/src/server"
	"github.com/mappichat/precinct-forecasts/src/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath     string
	verbose        bool
	regionPath     string
	populationPath string
	maxRows        int
)

func main() {
	startTime := time.Now()

	rootCmd := &cobra.Command{
		Use:   "precinct-forecasts",
		Short: "City of Melbourne population forecast dashboard",
		Long: `precinct-forecasts merges precinct boundaries with household forecasts,
applies a gentrification scenario and renders an extruded 3D map.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Setup(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			zap.S().Info(time.Since(startTime))
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to options file (json or yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&regionPath, "regions", "", "precinct csv path or url")
	rootCmd.PersistentFlags().StringVar(&populationPath, "population", "", "population forecast csv path or url")
	rootCmd.PersistentFlags().IntVarP(&maxRows, "rows", "n", 0, "maximum rows read from each csv")

	addGenerateCmd(rootCmd)
	addServeCmd(rootCmd)
	addDbwriteCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadOptions(cmd *cobra.Command) (project_types.Options, error) {
	utils.ConfigureEnv()

	options := utils.DefaultOptions()
	if configPath != "" {
		var err error
		if options, err = fileio.LoadOptions(configPath); err != nil {
			return options, err
		}
	}
	utils.ApplyEnv(&options)

	if regionPath != "" {
		options.RegionDataPath = regionPath
	}
	if populationPath != "" {
		options.PopulationDataPath = populationPath
	}
	if maxRows > 0 {
		options.MaxRows = maxRows
	}
	if cmd.Flags().Changed("resolution") {
		options.H3Resolution, _ = cmd.Flags().GetInt("resolution")
	}

	if err := utils.ValidateOptions(options); err != nil {
		return options, fmt.Errorf("invalid options: %w", err)
	}
	return options, nil
}

func addGenerateCmd(rootCmd *cobra.Command) {
	var outDir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write deck documents for every year and scenario plus precinct tile maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = fmt.Sprintf("./resolution%d-data/", options.H3Resolution)
			}
			dashboard := engine.NewDashboard(fileio.NewLoader(), options)

			precincts, err := dashboard.Precincts()
			if err != nil {
				return err
			}
			table, err := dashboard.Population()
			if err != nil {
				return err
			}

			zap.S().Info("generating precinct maps")
			h3ToPrecinct, precinctToH3, err := engine.GeneratePrecinctMaps(precincts, options.H3Resolution)
			if err != nil {
				return err
			}
			zap.S().Info("writing precinct maps to json")
			if err := fileio.WritePrecinctMaps(h3ToPrecinct, precinctToH3, outDir); err != nil {
				return err
			}

			zap.S().Info("generating decks")
			return generateDecks(dashboard, table, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "data output directory")
	cmd.Flags().IntP("resolution", "r", 9, "h3 resolution used for precinct tiles")
	rootCmd.AddCommand(cmd)
}

func generateDecks(dashboard *engine.Dashboard, table *project_types.PopulationTable, outDir string) error {
	options := dashboard.Options()

	processes := runtime.GOMAXPROCS(0)
	wg := sync.WaitGroup{}
	guard := make(chan struct{}, processes)
	mutex := sync.Mutex{}
	errs := []error{}

	for _, year := range table.Years() {
		if year < options.MinYear || year > options.MaxYear {
			continue
		}
		for _, scenario := range engine.Scenarios {
			if scenario.Level != 0 && !table.HasGentrificationFactor {
				zap.S().Warnf("skipping %d/%s: %v", year, scenario.Key, project_types.ErrNoGentrificationFactor)
				continue
			}
			wg.Add(1)
			guard <- struct{}{}
			go func(year int, scenario string) {
				defer func() {
					wg.Done()
					<-guard
				}()
				deck, err := dashboard.Deck(year, scenario)
				if err == nil {
					err = fileio.WriteDeck(deck, outDir, year, scenario)
				}
				if err != nil {
					mutex.Lock()
					errs = append(errs, fmt.Errorf("%d/%s: %w", year, scenario, err))
					mutex.Unlock()
					return
				}
				zap.S().Debugf("wrote %s", fileio.DeckFileName(year, scenario))
			}(year, scenario.Key)
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

func addServeCmd(rootCmd *cobra.Command) {
	var port int
	var mapsDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				options.Port = port
			}
			dashboard := engine.NewDashboard(fileio.NewLoader(), options)

			precincts, err := dashboard.Precincts()
			if err != nil {
				return err
			}
			if _, err := dashboard.Population(); err != nil {
				return err
			}

			srv := &server.Server{Dashboard: dashboard}
			if mapsDir != "" {
				zap.S().Infof("reading precinct maps from %s", mapsDir)
				srv.H3ToPrecinct, srv.PrecinctToH3, err = fileio.ReadPrecinctMaps(mapsDir)
			} else {
				zap.S().Info("generating precinct maps")
				srv.H3ToPrecinct, srv.PrecinctToH3, err = engine.GeneratePrecinctMaps(precincts, options.H3Resolution)
			}
			if err != nil {
				return err
			}

			if client := utils.OpenRedis(options.Redis); client != nil {
				zap.S().Infof("caching decks in redis at %s", options.Redis.Addr)
				defer client.Close()
				srv.Redis = client
			}
			if options.JWKSURL != "" {
				jwks, err := utils.JwksCreatePublicKey(options.JWKSURL, time.Hour)
				if err != nil {
					return err
				}
				defer jwks.EndBackground()
				srv.Keyfunc = jwt.Keyfunc(jwks.Keyfunc)
			}

			return server.RunServer(srv, options.Port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "serving port")
	cmd.Flags().StringVarP(&mapsDir, "maps", "m", "", "directory with precinct maps written by generate")
	cmd.Flags().IntP("resolution", "r", 9, "h3 resolution used for precinct tiles")
	rootCmd.AddCommand(cmd)
}

func addDbwriteCmd(rootCmd *cobra.Command) {
	var connectionString string
	cmd := &cobra.Command{
		Use:   "dbwrite",
		Short: "Write precincts, population records and precinct tiles to postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			if connectionString == "" {
				connectionString = options.DatabaseURL
			}
			if connectionString == "" {
				return errors.New("dbwrite needs --db or DATABASE_URL")
			}

			dashboard := engine.NewDashboard(fileio.NewLoader(), options)
			precincts, err := dashboard.Precincts()
			if err != nil {
				return err
			}
			table, err := dashboard.Population()
			if err != nil {
				return err
			}

			db, err := database.SqlInitialize(connectionString)
			if err != nil {
				return err
			}
			defer db.Close()

			zap.S().Info("creating tables")
			if err := database.CreateTables(db); err != nil {
				return err
			}
			zap.S().Info("populating precincts")
			if err := database.PopulatePrecincts(db, precincts); err != nil {
				return err
			}
			zap.S().Info("populating population")
			if err := database.PopulatePopulation(db, table); err != nil {
				return err
			}
			zap.S().Info("generating precinct maps")
			h3ToPrecinct, _, err := engine.GeneratePrecinctMaps(precincts, options.H3Resolution)
			if err != nil {
				return err
			}
			zap.S().Info("populating precinct tiles")
			return database.PopulateTiles(db, h3ToPrecinct)
		},
	}
	cmd.Flags().StringVar(&connectionString, "db", "", "postgres connection string")
	cmd.Flags().IntP("resolution", "r", 9, "h3 resolution used for precinct tiles")
	rootCmd.AddCommand(cmd)
}
