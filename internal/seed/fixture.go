// Package seed loads sample workspaces from YAML fixtures.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	models "zote/internal/domain/models/filetree"
)

//go:embed fixtures/workspace.yaml
var defaultFixture string

// FixtureNode is one node in a fixture file. Parent refers to another
// entry's Key; empty means root.
type FixtureNode struct {
	Key    string           `yaml:"key"`
	Parent string           `yaml:"parent,omitempty"`
	Name   string           `yaml:"name"`
	Type   string           `yaml:"type"` // "page" or "folder"
	Sort   *float64         `yaml:"sort,omitempty"`
	Icon   string           `yaml:"icon,omitempty"`
	Meta   *models.NodeMeta `yaml:"meta,omitempty"`
}

// Fixture is a flat list of nodes forming a workspace
type Fixture struct {
	Nodes []FixtureNode `yaml:"nodes"`
}

// DefaultFixture returns the embedded sample workspace
func DefaultFixture() (*Fixture, error) {
	return LoadFixture(strings.NewReader(defaultFixture))
}

// LoadFixture decodes and checks a fixture
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks keys are unique, types are known and every parent
// reference resolves
func (f *Fixture) Validate() error {
	keys := make(map[string]bool, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.Key == "" {
			return fmt.Errorf("fixture node %d: missing key", i)
		}
		if keys[n.Key] {
			return fmt.Errorf("fixture node %q: duplicate key", n.Key)
		}
		keys[n.Key] = true
		if _, err := n.Kind(); err != nil {
			return fmt.Errorf("fixture node %q: %w", n.Key, err)
		}
	}
	for _, n := range f.Nodes {
		if n.Parent != "" && !keys[n.Parent] {
			return fmt.Errorf("fixture node %q: unknown parent %q", n.Key, n.Parent)
		}
	}
	return nil
}

// Kind maps the fixture type name to a NodeKind
func (n FixtureNode) Kind() (models.NodeKind, error) {
	switch n.Type {
	case "page":
		return models.NodeKindPage, nil
	case "folder":
		return models.NodeKindFolder, nil
	default:
		return 0, fmt.Errorf("unknown type %q", n.Type)
	}
}
