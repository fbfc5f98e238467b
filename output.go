package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// printOutput writes v in the format chosen with --output. rows renders the
// table form; header names its columns.
func printOutput(w io.Writer, v any, header []string, rows [][]string) error {
	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		table := tablewriter.NewWriter(w)
		table.SetHeader(header)
		table.SetAutoWrapText(false)
		table.AppendBulk(rows)
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q: want table, json or yaml", outputFmt)
	}
}
