package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadRetrievalProfileEmptyPathIsZero(t *testing.T) {
	profile, err := LoadRetrievalProfile("")
	if err != nil {
		t.Fatalf("LoadRetrievalProfile(\"\") error = %v", err)
	}
	if len(profile.LegalTerms) != 0 || len(profile.HierarchyWeights) != 0 {
		t.Fatalf("expected zero profile, got %+v", profile)
	}
}

func TestLoadRetrievalProfileParsesBothSections(t *testing.T) {
	path := writeProfile(t, `
legal_terms:
  - 임대차
  - 분양권
hierarchy_weights:
  법률: 4.0
  용어집: 0.25
`)

	profile, err := LoadRetrievalProfile(path)
	if err != nil {
		t.Fatalf("LoadRetrievalProfile() error = %v", err)
	}
	if len(profile.LegalTerms) != 2 || profile.LegalTerms[1] != "분양권" {
		t.Fatalf("unexpected terms: %v", profile.LegalTerms)
	}
	if profile.HierarchyWeights["법률"] != 4.0 {
		t.Fatalf("unexpected weights: %v", profile.HierarchyWeights)
	}
}

func TestLoadRetrievalProfileRejectsNonPositiveWeight(t *testing.T) {
	path := writeProfile(t, `
hierarchy_weights:
  법률: -1
`)

	if _, err := LoadRetrievalProfile(path); err == nil {
		t.Fatalf("expected error for non-positive weight")
	}
}

func TestLoadRetrievalProfileRejectsBrokenYAML(t *testing.T) {
	path := writeProfile(t, "legal_terms: [unterminated")

	if _, err := LoadRetrievalProfile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
