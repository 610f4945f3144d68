package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	styleLabel     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleSucceeded = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C6FF00"))
	styleFailed    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3B6B"))
	styleActive    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00E5FF"))
)

func phaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "succeeded":
		return styleSucceeded
	case "failed":
		return styleFailed
	case "submitting":
		return styleActive
	default:
		return styleLabel
	}
}

// render writes v in the requested output format. ok reports whether the
// format was handled; "text" is left to the caller.
func render(w io.Writer, format string, v any) (bool, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return false, nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() {
			_ = enc.Close()
		}()
		return true, enc.Encode(v)
	default:
		return true, fmt.Errorf("unsupported output format: %q", format)
	}
}

func writeFlow(w io.Writer, v flowView) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", styleLabel.Render(label+":"), value)
	}

	line("phase", phaseStyle(v.Phase).Render(strings.ToUpper(v.Phase)))
	if v.Step != "" && v.Step != "none" {
		line("step", v.Step)
	}
	if v.TxURL != "" {
		line("tx", v.TxURL)
	}
	if v.Settlement != "" {
		line("settlement", v.Settlement)
	}
	if v.Error != "" {
		line("error", fmt.Sprintf("%s (%s)", v.Error, v.ErrorKind))
	}
}
