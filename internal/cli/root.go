package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/groupmute/groupmute/internal/conf"
)

var cfgFile string

// Version is set at build time
var Version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groupmute",
	Short: "Mute chat group notifications on a schedule.",
	Long: `groupmute decides whether chat group notifications fall inside a configured
quiet window, dismisses them through the platform when it can, and keeps an audit
log of everything it muted.`,
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

// ExecuteMCP runs the mcp subcommand directly, for the standalone MCP binary
func ExecuteMCP() {
	rootCmd.SetArgs(append([]string{mcpCmd.Name()}, os.Args[1:]...))
	Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches configs/groupmute.yaml and ~/.groupmute/groupmute.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "", "Set log level. Available: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "Preference database path")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("loglevel"))
	viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindEnv("db_path", "GROUPMUTE_DB_PATH")
	viper.BindEnv("log_level", "LOG_LEVEL")
}

// initConfig reads the .env file if present
func initConfig() {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = os.Getenv("GROUPMUTE_CONFIG")
	}
}

// loadConfig builds the configuration: file, then environment, then flags
func loadConfig() (*conf.Config, error) {
	cfg, err := conf.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("db_path"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
