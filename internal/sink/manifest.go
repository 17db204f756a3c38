// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest summarizes one harvest run for later auditing.
type Manifest struct {
	SeedID          string      `yaml:"seed_id"`
	SeedTitle       string      `yaml:"seed_title"`
	StartedAt       time.Time   `yaml:"started_at"`
	FinishedAt      time.Time   `yaml:"finished_at"`
	Processed       int         `yaml:"papers_processed"`
	Facts           int         `yaml:"facts_harvested"`
	DocsByDistance  map[int]int `yaml:"papers_by_distance"`
	FactsByDistance map[int]int `yaml:"facts_by_distance"`
	OutputPath      string      `yaml:"output_path"`
}

// WriteManifest writes the run manifest as YAML to path.
func WriteManifest(path string, m Manifest) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
