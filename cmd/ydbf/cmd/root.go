package cmd

import (
	"fmt"
	"os"

	"github.com/Ulysses-Xu/ydbf"
	"github.com/Ulysses-Xu/ydbf/internal/config"
	"github.com/Ulysses-Xu/ydbf/internal/logger"

	"github.com/spf13/cobra"
)

// cfg holds the configuration resolved for the running command
var cfg = config.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ydbf",
	Short: "Inspect, dump and write DBF files",
	Long: `ydbf reads and writes dBASE III/IV/V tables with Character, Numeral,
Date and Logical fields.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		cmd.SetContext(logger.WithContext(cmd.Context(), log))
		return nil
	},
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("raw") {
		cfg.RawCharacters, _ = flags.GetBool("raw")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	return cfg.Validate()
}

// openReader opens fileName with the resolved configuration.
func openReader(cmd *cobra.Command, fileName string) (*ydbf.Reader, error) {
	return ydbf.OpenReader(fileName, ydbf.ReaderConfig{
		Encoding:      cfg.Encoding,
		RawCharacters: cfg.RawCharacters,
		Strict:        cfg.Strict,
		Logger:        logger.FromContext(cmd.Context()),
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringP("encoding", "e", "", "Character encoding, overrides the language code of the file")
	rootCmd.PersistentFlags().Bool("raw", false, "Keep character fields as raw bytes")
	rootCmd.PersistentFlags().Bool("strict", false, "Run the consistency checks when opening")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}
