package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deck-recommender/internal/utils"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/storage"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deckrec",
	Short: "Recommend the best card decks for a live.",
	Long: `deckrec searches a player's cards for the decks that maximize live score,
event points, power, skill or an exact event bonus.

Data files can be local paths or http(s) URLs.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.deckrec.yaml)")

	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("master", "", "Master data JSON (path or URL)")
	rootCmd.PersistentFlags().String("user", "", "User data JSON (path or URL)")
	rootCmd.PersistentFlags().String("music", "", "Music meta JSON (path or URL, optional)")
	rootCmd.PersistentFlags().String("db", "", "SQLite run history file (empty disables history)")

	viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
	viper.BindPFlag("data.master", rootCmd.PersistentFlags().Lookup("master"))
	viper.BindPFlag("data.user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("data.music", rootCmd.PersistentFlags().Lookup("music"))
	viper.BindPFlag("history.db", rootCmd.PersistentFlags().Lookup("db"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".deckrec")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("deckrec")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}
	}

	if err := utils.SetLogLevel(viper.GetString("loglevel")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadData reads the configured master, user and music sources.
func loadData(ctx context.Context) (*masterdata.Tables, *masterdata.User, error) {
	src := masterdata.Sources{
		Master: viper.GetString("data.master"),
		User:   viper.GetString("data.user"),
		Music:  viper.GetString("data.music"),
	}
	if src.Master == "" || src.User == "" {
		return nil, nil, fmt.Errorf("master and user data are required (--master, --user or data.* in config)")
	}
	tables, user, err := masterdata.Load(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	utils.Log.Debugf("Loaded %d cards, %d owned", len(tables.Cards), len(user.Cards))
	return tables, user, nil
}

// openHistory opens the run history, or returns nil when none is configured.
func openHistory() (*storage.DB, error) {
	path := viper.GetString("history.db")
	if path == "" {
		return nil, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}
