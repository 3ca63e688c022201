package wiring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shieldworks/protect/internal/domain/config"
	"github.com/shieldworks/protect/internal/usecase"
	"gopkg.in/yaml.v3"
)

// GraphSource loads the desired wiring graph from a YAML file, falling back to
// the built-in graph when no file is configured.
type GraphSource struct {
	path string
}

// NewGraphSource creates a source reading path. An empty path means the built-in graph.
func NewGraphSource(path string) *GraphSource {
	return &GraphSource{path: path}
}

// ProvideGraphSource creates the source for the configured graph file.
func ProvideGraphSource(cfg *config.RuntimeConfig) *GraphSource {
	path := cfg.WiringGraphPath
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}
	return NewGraphSource(path)
}

// Load returns the graph.
func (s *GraphSource) Load(ctx context.Context) (domain.WiringGraph, error) {
	if s.path == "" {
		return domain.DefaultWiringGraph(), nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.WiringGraph{}, fmt.Errorf("failed to read wiring graph: %w", err)
	}
	graph, err := DecodeGraph(data)
	if err != nil {
		return domain.WiringGraph{}, fmt.Errorf("invalid wiring graph %s: %w", s.path, err)
	}
	return graph, nil
}

// DecodeGraph parses a YAML wiring graph. Unknown fields are rejected.
func DecodeGraph(data []byte) (domain.WiringGraph, error) {
	var graph domain.WiringGraph
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&graph); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.WiringGraph{}, fmt.Errorf("empty document")
		}
		return domain.WiringGraph{}, err
	}
	return graph, nil
}

// EncodeGraph renders a graph as YAML, for `wire plan --dump`.
func EncodeGraph(graph domain.WiringGraph) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(graph); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ usecase.WiringGraphSource = (*GraphSource)(nil)
