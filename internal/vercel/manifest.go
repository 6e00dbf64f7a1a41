package vercel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	IndexFile     = "index.html"
	ManifestFile  = "vercel.json"
	StaticBuilder = "@vercel/static"

	manifestVersion = 2
	projectSuffix   = "-portfolio"
)

// Build is one entry of the manifest's "builds" list.
type Build struct {
	Src string `json:"src"`
	Use string `json:"use"`
}

// Manifest is the vercel.json written next to the page.
type Manifest struct {
	Name    string  `json:"name"`
	Version int     `json:"version"`
	Builds  []Build `json:"builds"`
}

// ProjectName derives the hosting project name for a GitHub login. Repeated
// runs for the same login target the same project.
func ProjectName(login string) string {
	return login + projectSuffix
}

// NewManifest declares index.html as the only input, built as a static file.
func NewManifest(project string) Manifest {
	return Manifest{
		Name:    project,
		Version: manifestVersion,
		Builds:  []Build{{Src: IndexFile, Use: StaticBuilder}},
	}
}

// WriteFile writes the manifest as UTF-8 JSON to dir/vercel.json.
func (m Manifest) WriteFile(dir string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ManifestFile, err)
	}
	return nil
}
