package form

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads an answers file: a flat mapping of field name to value
func LoadYAML(path string) (Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Answers{}, fmt.Errorf("failed to read answers file: %w", err)
	}

	var values map[string]Answer
	if err := yaml.Unmarshal(data, &values); err != nil {
		return Answers{}, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}

	a, err := Decode(values)
	if err != nil {
		return Answers{}, fmt.Errorf("invalid answers file %s: %w", path, err)
	}
	return a, nil
}

// SaveYAML writes answers to path, replacing any previous file
func SaveYAML(path string, a Answers) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".answers-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create answers file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write answers file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write answers file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save answers file: %w", err)
	}
	return nil
}
