package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadEncoderArtifact reads an encoding transform artifact from a .json, .yaml or .yml file.
func ReadEncoderArtifact(path string) (*EncoderArtifact, error) {
	var a EncoderArtifact
	if err := readArtifactFile(path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ReadRegressorArtifact reads a regression model artifact from a .json, .yaml or .yml file.
func ReadRegressorArtifact(path string) (*RegressorArtifact, error) {
	var a RegressorArtifact
	if err := readArtifactFile(path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func readArtifactFile(path string, out any) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported artifact format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	if ext == ".json" {
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("failed to decode artifact %s: %w", path, err)
		}
		return nil
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}
	return nil
}
