package base

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/cli"
	"gopkg.in/yaml.v3"
)

// Formats accepted by Output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return f == FormatText || f == FormatJSON || f == FormatYAML
}

// Output writes v as JSON or YAML. YAML keys follow the JSON field names and
// keep their order. Text output is left to each command.
func Output(ui cli.Ui, format string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}

	switch format {
	case FormatJSON:
		ui.Output(string(b))
		return nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(b, &node); err != nil {
			return fmt.Errorf("error encoding output: %w", err)
		}
		clearStyle(&node)
		out, err := yaml.Marshal(&node)
		if err != nil {
			return fmt.Errorf("error encoding output: %w", err)
		}
		ui.Output(strings.TrimRight(string(out), "\n"))
		return nil
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// clearStyle drops the flow and quoting styles that parsing JSON leaves on
// every node, so the document is written in block style.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
