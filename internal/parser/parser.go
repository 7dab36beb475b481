// Package parser splits content files into a YAML metadata header and a
// Markdown body, and serializes them back.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Result holds the output of parsing a content file.
type Result struct {
	Meta map[string]any
	Body string
}

// Parse extracts the metadata header and body from raw file bytes.
// A file without a header (or with an unterminated one) is all body.
// Malformed YAML inside the header is an error: unlike a missing header
// it signals a broken file the operator should see.
func Parse(data []byte) (*Result, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return &Result{Body: string(data)}, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return &Result{Body: string(data)}, nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var meta map[string]any
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		return nil, fmt.Errorf("parser: invalid metadata header: %w", err)
	}
	return &Result{Meta: meta, Body: body}, nil
}

// Marshal serializes a metadata header and body back to file bytes.
// Keys are emitted in the given order; keys absent from meta are skipped,
// which lets the field table keep generated files minimal.
func Marshal(order []string, meta map[string]any, body string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range order {
		v, ok := meta[k]
		if !ok {
			continue
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		var valNode yaml.Node
		if err := valNode.Encode(v); err != nil {
			return nil, fmt.Errorf("parser: encode %s: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, &valNode)
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	if len(node.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("parser: encode header: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("parser: close encoder: %w", err)
		}
	}
	buf.WriteString(delim + "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}
