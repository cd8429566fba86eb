package cmd

import (
	"fmt"

	"github.com/Ulysses-Xu/ydbf"
	"github.com/Ulysses-Xu/ydbf/internal/gendbf"
	"github.com/Ulysses-Xu/ydbf/internal/logger"
	"github.com/spf13/cobra"
)

// genCmd represents the gen command
var genCmd = &cobra.Command{
	Use:   "gen <file>",
	Short: "Create a DBF file with random data",
	Long: `Create a DBF file with a random field structure and random records.
May be useful for testing.

Example:
  ydbf gen --records 2000 --fields 20 random.dbf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := gendbf.DefaultOptions()
		if cfg.Encoding != "" {
			opts.Encoding = cfg.Encoding
		}
		opts.Records, _ = cmd.Flags().GetInt("records")
		opts.Fields, _ = cmd.Flags().GetInt("fields")
		if cmd.Flags().Changed("seed") {
			opts.Seed, _ = cmd.Flags().GetUint64("seed")
		}
		if opts.Records < 0 || opts.Fields < 1 {
			return fmt.Errorf("need at least one field and a non-negative number of records")
		}

		log := logger.FromContext(cmd.Context())
		fields, err := gendbf.GenerateFile(args[0], opts, ydbf.WriterConfig{Logger: log})
		if err != nil {
			return err
		}
		log.Info("generated dbf", "file", args[0], "records", opts.Records, "fields", len(fields), "seed", opts.Seed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	genCmd.Flags().IntP("records", "n", 2000, "Number of records")
	genCmd.Flags().Int("fields", 20, "Number of fields")
	genCmd.Flags().Uint64("seed", 0, "Random seed, defaults to the current time")
}
