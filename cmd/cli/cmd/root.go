package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	apiURL   string
	format   string
	quiet    bool
	noColor  bool
	language string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "school-admin",
	Short: "Administration console for the school backend",
	Long: `School Admin manages students, families, classes, fees, invoices,
payments and grades through the school REST API. It also produces
invoices, registration confirmations, report cards and ledgers as
PDF, HTML or spreadsheet files.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./school-admin.yaml)")
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "s", "", "Backend API base URL")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "Message language (fr, en)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// newViper returns a viper instance with the global flags bound to their config keys.
// A flag only overrides the config when it was set on the command line.
func newViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	flags := cmd.Root().PersistentFlags()
	bindings := map[string]string{
		"api_url":   "api-url",
		"format":    "format",
		"quiet":     "quiet",
		"no_color":  "no-color",
		"language":  "lang",
		"log_level": "log-level",
	}
	for key, name := range bindings {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}
	return v
}
