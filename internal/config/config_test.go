package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.QdrantCollection != "law_chunks" {
		t.Fatalf("QdrantCollection = %q, want law_chunks", cfg.QdrantCollection)
	}
	if cfg.SearchCacheSize != 512 {
		t.Fatalf("SearchCacheSize = %d, want 512", cfg.SearchCacheSize)
	}
	if cfg.Neo4jURI != "" {
		t.Fatalf("Neo4jURI should default to disabled, got %q", cfg.Neo4jURI)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("SEARCH_CACHE_SIZE", "64")
	t.Setenv("OLLAMA_EMBED_MODEL", "bge-m3:567m")

	cfg := Load()
	if cfg.APIPort != "9000" {
		t.Fatalf("APIPort = %q, want 9000", cfg.APIPort)
	}
	if cfg.SearchCacheSize != 64 {
		t.Fatalf("SearchCacheSize = %d, want 64", cfg.SearchCacheSize)
	}
	if cfg.OllamaEmbedModel != "bge-m3:567m" {
		t.Fatalf("OllamaEmbedModel = %q", cfg.OllamaEmbedModel)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("SEARCH_CACHE_SIZE", "lots")

	cfg := Load()
	if cfg.SearchCacheSize != 512 {
		t.Fatalf("SearchCacheSize = %d, want fallback 512", cfg.SearchCacheSize)
	}
}
