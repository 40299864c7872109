// Package testdata embeds reference documents used by the end-to-end tests
// and the CLI examples.
package testdata

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/reference"
)

//go:embed references/*.json
var referencesFS embed.FS

// Fixture names.
const (
	// ArmSweep is a 20 frame compact-format reference of the right arm
	// sweeping from horizontal to straight down.
	ArmSweep = "arm_sweep"
	// ArmSweepLive is the same movement captured in the 33-joint live
	// format at twice the frame rate.
	ArmSweepLive = "arm_sweep_live"
	// Still holds the arm horizontal without moving.
	Still = "still"
)

// ReadDocument returns the raw JSON of a fixture.
func ReadDocument(name string) ([]byte, error) {
	data, err := referencesFS.ReadFile(path.Join("references", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", name, err)
	}
	return data, nil
}

// LoadDocument loads and validates a fixture document.
func LoadDocument(name string) (*reference.Document, error) {
	data, err := ReadDocument(name)
	if err != nil {
		return nil, err
	}
	doc, err := reference.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return doc, nil
}

// LoadRecording loads a fixture as a recording.
func LoadRecording(name string) (landmark.Recording, error) {
	doc, err := LoadDocument(name)
	if err != nil {
		return landmark.Recording{}, err
	}
	return doc.Recording()
}

// Names lists the embedded fixtures.
func Names() ([]string, error) {
	entries, err := referencesFS.ReadDir("references")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
