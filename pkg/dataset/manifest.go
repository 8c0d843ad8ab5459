package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestEntry names one dataset and its on-disk location.
type ManifestEntry struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// Manifest lists the datasets available to an annotation run.
type Manifest struct {
	Datasets []ManifestEntry `yaml:"datasets"`
}

// LoadManifest parses a datasets.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	for i, entry := range m.Datasets {
		if entry.Name == "" || entry.Dir == "" {
			return nil, fmt.Errorf("manifest entry %d: name and dir are required", i)
		}
	}
	return &m, nil
}

// Open resolves a named dataset from the manifest.
func (m *Manifest) Open(name string) (*CSVDataset, error) {
	for _, entry := range m.Datasets {
		if entry.Name == name {
			return NewCSVDataset(entry.Name, entry.Dir)
		}
	}
	return nil, fmt.Errorf("dataset %q not in manifest", name)
}
