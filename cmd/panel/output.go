package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

var borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

// printValue writes v as JSON or YAML. Table output falls back to YAML for
// values that have no tabular form.
func printValue(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// printTable renders rows with a header, or v in the structured format.
func printTable(w io.Writer, format string, v any, headers []string, rows [][]string) error {
	if format != "table" {
		return printValue(w, format, v)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t)
	return err
}
