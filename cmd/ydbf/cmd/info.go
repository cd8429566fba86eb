package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the header and fields of a DBF file",
	Long: `Show the header, dialect, encoding and field structure of a DBF file.

Example:
  ydbf info --strict orders.dbf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		h := r.Header()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dialect:     %s (0x%02x)\n", h.Dialect(), h.Signature)
		fmt.Fprintf(out, "Updated:     %s\n", h.Created.Format("2006-01-02"))
		fmt.Fprintf(out, "Records:     %d\n", h.NumRecords)
		fmt.Fprintf(out, "Header size: %d\n", h.HeaderLength)
		fmt.Fprintf(out, "Record size: %d\n", r.RecordSize())
		encoding := r.Encoding()
		if encoding == "" {
			encoding = "raw"
		}
		fmt.Fprintf(out, "Encoding:    %s (lang code 0x%02x)\n", encoding, h.LanguageCode)
		if cfg.Strict {
			fmt.Fprintln(out, "Consistency: ok")
		}
		fmt.Fprintln(out)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTYPE\tSIZE\tDEC")
		for _, f := range r.Fields() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", f.Name, f.Type, f.Size, f.Decimal)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
