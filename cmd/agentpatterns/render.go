package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls tableFn for the table format.
func render(w io.Writer, format string, v any, tableFn func() string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		_, err := fmt.Fprintln(w, tableFn())
		return err
	default:
		return checkFormat(format)
	}
}

// fieldTable renders a titled two-column Field/Value table.
func fieldTable(title string, rows [][]string) string {
	return gridTable(title, []string{"Field", "Value"}, rows)
}

// gridTable renders a titled table. The first column is styled as a key.
func gridTable(title string, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		t.Row(r...)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(t.String())
	return b.String()
}

// statusMark returns a coloured check or cross.
func statusMark(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("✓")
	}
	return color.New(color.FgRed).Sprint("✗")
}

// printStatus writes a coloured symbol followed by a message.
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// orNone substitutes "None" for empty display values.
func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
