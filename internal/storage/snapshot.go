package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/models"
)

const (
	snapshotVersion = "1.0"
	filePermissions = 0644
	dirPermissions  = 0755
)

// SnapshotFile is the on-disk layout of an exported analysis.
type SnapshotFile struct {
	Version  string          `json:"version"`
	SavedAt  time.Time       `json:"saved_at"`
	Analysis json.RawMessage `json:"analysis"`
}

// WriteSnapshot writes state to path as JSON. The file is written to a
// temporary sibling first and renamed into place.
func WriteSnapshot(path string, state *models.State) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	analysis, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	jsonData, err := json.MarshalIndent(SnapshotFile{
		Version:  snapshotVersion,
		SavedAt:  time.Now().UTC(),
		Analysis: analysis,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// ReadSnapshot loads a file written by WriteSnapshot. A stale temporary file
// left by an interrupted write is removed.
func ReadSnapshot(path string) (*SnapshotFile, error) {
	tempPath := path + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snapshot SnapshotFile
	if err := json.Unmarshal(jsonData, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// SnapshotName is the default file name for state inside an export directory.
func SnapshotName(state *models.State) string {
	return fmt.Sprintf("%s_%s_%d-%d.json",
		catalog.CountryCode(state.Country()), catalog.IndicatorAt(state.Indicator()).Code,
		state.StartYear(), state.EndYear())
}
