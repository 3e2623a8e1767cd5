package relays

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadSettings reads relay settings from a JSON file, returning defaults
// when the file does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("relays: read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("relays: parse settings: %w", err)
	}
	return &s, nil
}

// SaveSettings writes relay settings as pretty-printed JSON.
func SaveSettings(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("relays: create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("relays: marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("relays: write settings: %w", err)
	}
	return nil
}
