package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Ulysses-Xu/ydbf"
	"github.com/Ulysses-Xu/ydbf/internal/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// appendCmd represents the append command
var appendCmd = &cobra.Command{
	Use:   "append <file>",
	Short: "Append JSON records read from stdin to a DBF file",
	Long: `Append records to an existing DBF file. Records are read from stdin as
JSON objects keyed by field name, one per line. Dates may be given as
YYYY-MM-DD, YYYYMMDD or DD.MM.YYYY. Nothing is written unless every record
can be encoded.

Example:
  echo '{"ID": 1, "NAME": "ALICE"}' | ydbf append people.dbf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReader(cmd, args[0])
		if err != nil {
			return err
		}
		fields := r.Fields()
		if err := r.Close(); err != nil {
			return err
		}

		records, err := readJSONRecords(cmd.InOrStdin(), fields)
		if err != nil {
			return err
		}
		log := logger.FromContext(cmd.Context())
		err = ydbf.Append(args[0], records, ydbf.AppendConfig{
			Encoding:      cfg.Encoding,
			RawCharacters: cfg.RawCharacters,
			Logger:        log,
		})
		if err != nil {
			return err
		}
		log.Info("appended records", "file", args[0], "records", len(records))
		return nil
	},
}

// readJSONRecords decodes a stream of JSON objects into records typed for
// fields. Missing keys are stored as nil.
func readJSONRecords(r io.Reader, fields []ydbf.Field) ([]ydbf.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []ydbf.Record
	for {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", len(records), err)
		}
		rec := make(ydbf.Record, len(fields))
		for _, f := range fields {
			v, err := jsonValue(f, obj[f.Name])
			if err != nil {
				return nil, fmt.Errorf("record #%d, field %s: %w", len(records), f.Name, err)
			}
			rec[f.Name] = v
		}
		records = append(records, rec)
	}
}

func jsonValue(f ydbf.Field, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		// numerals go through their exact text
		return string(val), nil
	case string:
		if f.Type == ydbf.Date {
			if t, err := time.Parse(time.DateOnly, val); err == nil {
				return t, nil
			}
		}
		return val, nil
	case bool:
		return val, nil
	}
	return nil, fmt.Errorf("unsupported JSON value %T", v)
}

func init() {
	rootCmd.AddCommand(appendCmd)
}
