package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goEscrowd/internal/config"
)

// Build information, set with -ldflags at release time
var (
	Version   = "0.1.0-dev"
	Commit    = ""
	BuildDate = ""
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool

	// cfg is loaded before any command runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "escrowd",
	Short: "escrowd - two-party token swap escrow daemon",
	Long: `escrowd runs a token ledger with a two-party swap escrow. A maker locks
token A in a vault owned by a derived offer address and asks a fixed amount
of token B. Any taker paying that amount receives the vault in the same
atomic step.

Without a subcommand the daemon starts.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging, with caller information")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// initConfig loads the configuration file and environment, then sets up
// logging from it.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return setupLogging(cfg.Log)
}
