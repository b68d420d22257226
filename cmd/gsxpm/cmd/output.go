package cmd

import (
	"encoding/json"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONL writes one compact JSON document per item.
func outputJSONL[T any](items []T) error {
	enc := json.NewEncoder(os.Stdout)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// outputList writes items as JSON or JSON Lines when requested and reports
// whether it did.
func outputList[T any](items []T) (bool, error) {
	switch {
	case jsonlOut:
		return true, outputJSONL(items)
	case jsonOut:
		if items == nil {
			items = []T{}
		}
		return true, outputJSON(items)
	}
	return false, nil
}

func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}
