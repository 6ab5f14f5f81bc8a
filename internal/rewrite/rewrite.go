// Package rewrite derives the load-test configuration for one run from a
// YAML template by overwriting the arrival rate of the first phase.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	configKey      = "config"
	phasesKey      = "phases"
	arrivalRateKey = "arrivalRate"
)

var (
	// ErrNoPhase is returned when the template has no config.phases[0] mapping.
	ErrNoPhase = errors.New("template has no phase definitions under config.phases")

	// ErrInvalidRate is returned for non-positive arrival rates.
	ErrInvalidRate = errors.New("arrival rate must be positive")
)

// Error describes a failed rewrite step. Op is one of "read", "parse" or
// "write".
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Rewrite loads templatePath, sets config.phases[0].arrivalRate to
// arrivalRate and writes the full document to outputPath, replacing any
// previous content. Everything else in the document is left untouched.
func Rewrite(templatePath, outputPath string, arrivalRate int) error {
	if arrivalRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, arrivalRate)
	}

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return &Error{Op: "read", Path: templatePath, Err: err}
	}

	out, err := Apply(data, arrivalRate)
	if err != nil {
		return &Error{Op: "parse", Path: templatePath, Err: err}
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return &Error{Op: "write", Path: outputPath, Err: err}
	}

	return nil
}

// Apply performs the rewrite on an in-memory document.
func Apply(data []byte, arrivalRate int) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML template: %w", err)
	}

	phase, err := firstPhase(&doc)
	if err != nil {
		return nil, err
	}

	setScalar(&doc, phase, arrivalRateKey, strconv.Itoa(arrivalRate))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}

	return buf.Bytes(), nil
}

// firstPhase walks document -> config -> phases -> [0]. Every node on the
// path is detached from YAML anchors and aliases first, so editing it never
// changes another part of the document.
func firstPhase(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNoPhase
	}
	root := doc

	cfg := detachValue(root, resolveAlias(doc.Content[0]), configKey)
	if cfg == nil {
		return nil, ErrNoPhase
	}

	phases := detachValue(root, cfg, phasesKey)
	if phases == nil || phases.Kind != yaml.SequenceNode || len(phases.Content) == 0 {
		return nil, ErrNoPhase
	}

	phase := detach(root, phases, 0)
	if phase.Kind != yaml.MappingNode {
		return nil, ErrNoPhase
	}
	return phase, nil
}

// detachValue is detach for the value stored under key in mapping. It
// returns nil when mapping is not a mapping or lacks key.
func detachValue(root, mapping *yaml.Node, key string) *yaml.Node {
	i := valueIndex(mapping, key)
	if i < 0 {
		return nil
	}
	return detach(root, mapping, i)
}

// valueIndex returns the index in node.Content of the value stored under
// key, or -1.
func valueIndex(node *yaml.Node, key string) int {
	if node == nil || node.Kind != yaml.MappingNode {
		return -1
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}

// detach makes parent.Content[i] safe to edit in place. An alias is
// replaced by a private copy of its target. An anchored node stays where it
// is, but every alias to it elsewhere in root is expanded to a copy of its
// current value and the anchor is dropped.
func detach(root, parent *yaml.Node, i int) *yaml.Node {
	node := parent.Content[i]
	if node.Kind == yaml.AliasNode {
		node = copyNode(resolveAlias(node))
		parent.Content[i] = node
		return node
	}

	if node.Anchor != "" {
		snapshot := copyNode(node)
		expandAliases(root, node, snapshot)
		node.Anchor = ""
	}
	return node
}

// expandAliases replaces every alias of target under n with a copy of
// value.
func expandAliases(n, target, value *yaml.Node) {
	for i, child := range n.Content {
		if child.Kind == yaml.AliasNode && child.Alias == target {
			n.Content[i] = copyNode(value)
			continue
		}
		expandAliases(child, target, value)
	}
}

// copyNode returns a deep copy of n without anchors. Aliases inside the
// copy still point at their original targets.
func copyNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Anchor = ""
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = copyNode(child)
		}
	}
	return &c
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

// setScalar overwrites the integer scalar under key, appending the key if
// the mapping does not have it yet.
func setScalar(root, mapping *yaml.Node, key, value string) {
	if i := valueIndex(mapping, key); i >= 0 {
		old := detach(root, mapping, i)
		mapping.Content[i] = &yaml.Node{
			Kind:        yaml.ScalarNode,
			Tag:         "!!int",
			Value:       value,
			HeadComment: old.HeadComment,
			LineComment: old.LineComment,
			FootComment: old.FootComment,
		}
		return
	}

	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: value},
	)
}
