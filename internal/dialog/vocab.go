// Package dialog implements the slot-filling conversation behind the chat
// backend: accumulated query state, parameter extraction from user messages,
// and response generation.
package dialog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var defaultVocabYAML []byte

// Vocabulary lists the valid values for every query slot.
type Vocabulary struct {
	FirstYear int                 `yaml:"first_year"`
	LastYear  int                 `yaml:"last_year"`
	Levels    []string            `yaml:"levels"`
	Modes     []string            `yaml:"modes"`
	Metrics   map[string][]string `yaml:"metrics"`
}

// DefaultVocabulary returns the embedded reference vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := parseVocab(defaultVocabYAML)
	if err != nil {
		// The embedded file is part of the build; failing to parse it is a bug.
		panic(fmt.Sprintf("embedded vocab: %v", err))
	}
	return v
}

// LoadVocabulary reads a vocabulary override from a YAML file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	return parseVocab(data)
}

func parseVocab(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal vocab: %w", err)
	}
	if v.FirstYear == 0 || v.LastYear == 0 || v.FirstYear > v.LastYear {
		return nil, fmt.Errorf("invalid term year range %d-%d", v.FirstYear, v.LastYear)
	}
	return &v, nil
}

// Terms returns every valid term, oldest first.
func (v *Vocabulary) Terms() []string {
	terms := make([]string, 0, v.LastYear-v.FirstYear+1)
	for y := v.FirstYear; y <= v.LastYear; y++ {
		terms = append(terms, fmt.Sprintf("Fall %d", y))
	}
	return terms
}

// ValidTerm reports whether t is within the available data range.
func (v *Vocabulary) ValidTerm(t string) bool {
	var year int
	if _, err := fmt.Sscanf(t, "Fall %d", &year); err != nil {
		return false
	}
	return year >= v.FirstYear && year <= v.LastYear
}

// ValidLevel reports whether level is a known value.
func (v *Vocabulary) ValidLevel(level string) bool {
	return contains(v.Levels, level)
}

// ValidMode reports whether mode is a known value.
func (v *Vocabulary) ValidMode(mode string) bool {
	return contains(v.Modes, mode)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
