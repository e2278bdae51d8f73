package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridbase/gridstore/gridstore"
	"github.com/gridbase/gridstore/gridstore/remote/jsonfile"
	"github.com/gridbase/gridstore/gridstore/remote/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "gridstore",
	Short: "Gridstore CLI - sheet and record management",
	Long: `Gridstore manages spreadsheet-style sheets: typed fields, ordered
records and per-cell values, persisted to a local SQLite database or a
JSON file.

Examples:
  # Create a sheet from a schema file
  gridstore sheet create --from tasks.yaml

  # Add a record
  gridstore record create <sheet-id> Title="Write report" Estimate=3

  # List a sheet's records
  gridstore record list <sheet-id>`,
	SilenceUsage: true,
}

var (
	backend  string
	dbPath   string
	appID    string
	logLevel string
	verbose  bool
)

// env is the wiring every subcommand works against, assembled in the
// persistent pre-run once flags and config are settled
type cliEnv struct {
	remote gridstore.Remote
	closer io.Closer
	store  *gridstore.Store
	loader *gridstore.Loader
	engine *gridstore.Engine
	logger *slog.Logger
}

var env *cliEnv

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&backend, "backend", "sqlite", "Storage backend: sqlite|json")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "gridstore.db", "Database or JSON file path")
	rootCmd.PersistentFlags().StringVarP(&appID, "app", "a", "default", "App the sheets belong to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror logs to stderr")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Config file values fill in flags the user did not set.
		if !cmd.Flags().Changed("backend") {
			backend = viper.GetString("backend")
		}
		if !cmd.Flags().Changed("db") {
			dbPath = viper.GetString("db")
		}
		if !cmd.Flags().Changed("app") {
			appID = viper.GetString("app")
		}

		logger, err := initLogging(viper.GetString("log-level"), verbose)
		if err != nil {
			return err
		}

		remote, closer, err := openRemote(backend, dbPath)
		if err != nil {
			return err
		}

		store := gridstore.NewStore()
		env = &cliEnv{
			remote: remote,
			closer: closer,
			store:  store,
			loader: gridstore.NewLoader(store, remote, gridstore.LoaderOptions{Logger: logger}),
			engine: gridstore.NewEngine(store, remote, gridstore.EngineOptions{Logger: logger}),
			logger: logger,
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if env != nil && env.closer != nil {
			return env.closer.Close()
		}
		return nil
	}

	rootCmd.AddCommand(sheetCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(recordCmd)
}

func initConfig() {
	viper.SetConfigName("gridstore")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/gridstore")
	viper.SetEnvPrefix("GRIDSTORE")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func openRemote(backend, path string) (gridstore.Remote, io.Closer, error) {
	switch backend {
	case "sqlite":
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "json":
		return jsonfile.New(path), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want sqlite or json)", backend)
	}
}

// loadSheet pulls a sheet and all of its records into the store
func loadSheet(cmd *cobra.Command, sheetID string) error {
	if err := env.loader.LoadSheet(cmd.Context(), sheetID); err != nil {
		return err
	}
	return env.loader.LoadAll(cmd.Context(), sheetID)
}
