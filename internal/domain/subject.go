package domain

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Subject is a supplier under risk assessment. Immutable once loaded.
type Subject struct {
	ID          string  `yaml:"id" json:"id" validate:"required"`
	Name        string  `yaml:"name" json:"name" validate:"required"`
	Location    string  `yaml:"location" json:"location"`
	Lat         float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
	CountryCode string  `yaml:"country_code" json:"country_code" validate:"required,len=3"`
	Ticker      string  `yaml:"ticker" json:"ticker,omitempty"`
}

// subjectsFile is the top-level shape of the registry YAML.
type subjectsFile struct {
	Subjects []Subject `yaml:"subjects"`
}

// LoadSubjects reads and validates the subject registry. An empty or
// malformed registry is a configuration error: the caller must not start a
// collection cycle without subjects, since an empty cycle would look like a
// healthy-but-empty result set.
func LoadSubjects(path string) ([]Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subjects file: %w", err)
	}
	return ParseSubjects(data)
}

// ParseSubjects parses and validates registry YAML content.
func ParseSubjects(data []byte) ([]Subject, error) {
	var file subjectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse subjects file: %w", err)
	}
	if len(file.Subjects) == 0 {
		return nil, fmt.Errorf("subjects file contains no subjects")
	}

	v := validator.New()
	seen := make(map[string]bool, len(file.Subjects))
	for i, s := range file.Subjects {
		if err := v.Struct(s); err != nil {
			return nil, fmt.Errorf("subject %d (%q): %w", i, s.ID, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate subject id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return file.Subjects, nil
}
