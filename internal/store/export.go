// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// ExportYAML writes every record in s to path as a YAML list.
func ExportYAML(ctx context.Context, s Store, path string) error {
	papers, err := exportPapers(ctx, s)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(path, data)
}

// ExportJSON writes every record in s to path as an indented JSON array.
func ExportJSON(ctx context.Context, s Store, path string) error {
	papers, err := exportPapers(ctx, s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(path, data)
}

func exportPapers(ctx context.Context, s Store) ([]types.Paper, error) {
	papers, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing papers for export: %w", err)
	}
	if papers == nil {
		papers = []types.Paper{}
	}
	return papers, nil
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
