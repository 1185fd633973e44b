package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/licensetower/pkg/analysis"
)

// WriteJSON encodes report as indented JSON.
func WriteJSON(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes report as YAML. The document mirrors the JSON encoding,
// field names and order included.
func WriteYAML(w io.Writer, report *analysis.Report) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// blockStyle clears the flow and quoting styles the JSON source carries.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
