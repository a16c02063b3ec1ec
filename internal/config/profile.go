package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RetrievalProfile tunes the query enhancer and the hierarchy ranker
// without a rebuild. Both sections are optional; an absent section keeps
// the compiled-in defaults.
type RetrievalProfile struct {
	// LegalTerms replaces the built-in domain vocabulary the enhancer
	// matches query tokens against.
	LegalTerms []string `yaml:"legal_terms"`
	// HierarchyWeights maps document-type values (as stored in the
	// corpus, e.g. 법률) to authority weights.
	HierarchyWeights map[string]float64 `yaml:"hierarchy_weights"`
}

// LoadRetrievalProfile reads a profile from path. An empty path returns
// a zero profile, meaning defaults everywhere.
func LoadRetrievalProfile(path string) (RetrievalProfile, error) {
	var profile RetrievalProfile
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read retrieval profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse retrieval profile: %w", err)
	}

	for docType, weight := range profile.HierarchyWeights {
		if weight <= 0 {
			return RetrievalProfile{}, fmt.Errorf("retrieval profile: weight for %q must be positive, got %v", docType, weight)
		}
	}
	return profile, nil
}
