package cmd

import (
	"bytes"
	"encoding/hex"
	"io"
	"time"

	"github.com/Ulysses-Xu/ydbf"
	"github.com/cockroachdb/apd/v3"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the records of a DBF file",
	Long: `Print the records of a DBF file as JSON lines or as a stream of YAML documents.
Fields keep the order of the file.

Example:
  ydbf dump --start 10 --limit 5 --format yaml orders.dbf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		start, _ := cmd.Flags().GetInt("start")
		limit, _ := cmd.Flags().GetInt("limit")
		deleted, _ := cmd.Flags().GetBool("deleted")
		columns := make([]string, 0, len(r.Fields())+1)
		if deleted {
			columns = append(columns, ydbf.DeletionFlag)
		}
		for _, f := range r.Fields() {
			columns = append(columns, f.Name)
		}

		var emit func(ydbf.Record) error
		out := cmd.OutOrStdout()
		switch cfg.Output.Format {
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			emit = func(rec ydbf.Record) error { return enc.Encode(yamlRecord(columns, rec)) }
		default:
			emit = func(rec ydbf.Record) error { return writeJSONLine(out, columns, rec) }
		}
		for rec, err := range r.Records(ydbf.Scan{Start: start, Limit: limit, ShowDeleted: deleted}) {
			if err != nil {
				return err
			}
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	},
}

// displayValue converts a decoded value into something both encoders print
// faithfully.
func displayValue(v any) any {
	switch val := v.(type) {
	case *apd.Decimal:
		return json.Number(val.Text('f'))
	case time.Time:
		return val.Format(time.DateOnly)
	case []byte:
		return hex.EncodeToString(val)
	}
	return v
}

// writeJSONLine prints rec as one JSON object with keys in column order.
func writeJSONLine(w io.Writer, columns []string, rec ydbf.Record) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return err
		}
		value, err := json.Marshal(displayValue(rec[column]))
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// yamlRecord builds a mapping node with keys in column order.
func yamlRecord(columns []string, rec ydbf.Record) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, column := range columns {
		value := &yaml.Node{}
		switch v := displayValue(rec[column]).(type) {
		case json.Number:
			value.SetString(string(v))
			value.Tag = "!!float"
		default:
			if err := value.Encode(v); err != nil {
				value.SetString("")
			}
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: column}, value)
	}
	return node
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Int("start", 0, "Index of the first record slot")
	dumpCmd.Flags().Int("limit", 0, "Maximum number of record slots to visit, 0 for all")
	dumpCmd.Flags().Bool("deleted", false, "Include deleted records and the deletion flag")
	dumpCmd.Flags().StringP("format", "f", "json", "Output format (json, yaml)")
}
