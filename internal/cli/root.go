// internal/cli/root.go
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chorus-cli/chorus/internal/appconfig"
	"github.com/chorus-cli/chorus/internal/logging"
	"github.com/chorus-cli/chorus/internal/session"
)

// masterKeyEnv names the environment variable holding the hex-encoded
// preference-store key. Its absence is fatal for commands that open a session.
const masterKeyEnv = "CHORUS_MASTER_KEY"

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chorus",
	Short: "chorus — fan one question out to a panel of models and synthesize a single answer",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; the environment itself may carry the key.
		_ = godotenv.Load()

		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		if !cmd.Flags().Changed("debug") {
			_ = cmd.Flags().Set("debug", strconv.FormatBool(viper.GetBool("debug")))
		}
		for _, name := range []string{"logFile", "catalogPath", "dataDir"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}

		cfg, err := appconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetBool("debug"); v {
			cfg.Debug = true
		}
		if v, _ := cmd.Flags().GetString("logFile"); v != "" {
			cfg.LogFile = v
		}
		if v, _ := cmd.Flags().GetString("catalogPath"); v != "" {
			cfg.CatalogPath = v
		}
		if v, _ := cmd.Flags().GetString("dataDir"); v != "" {
			cfg.DataDir = v
		}
		currentConfig = &cfg

		if err := logging.Init(cfg.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.Debug {
			pp.Println(cfg)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.json", "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("catalogPath", "", "path to the model catalog")
	rootCmd.PersistentFlags().String("dataDir", "", "directory for preference and history files")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("catalogPath", rootCmd.PersistentFlags().Lookup("catalogPath"))
	_ = viper.BindPFlag("dataDir", rootCmd.PersistentFlags().Lookup("dataDir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// newSession opens a session, requiring the master key to be present.
func newSession() (*session.Session, error) {
	key := os.Getenv(masterKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s is not set; generate one and export it before starting", masterKeyEnv)
	}
	return session.New(GetConfig(), key)
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
