package cache

import (
	"testing"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

func TestCacheRoundTripAndPurge(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var events []string
	c.SetObserver(func(event string) { events = append(events, event) })

	resp := domain.SearchResponse{Status: "success", Query: "전세", Count: 1}
	c.Add("hybrid|10|||-|-|전세", resp)

	got, ok := c.Get("hybrid|10|||-|-|전세")
	if !ok || got.Query != "전세" {
		t.Fatalf("Get() = (%+v, %v), want stored response", got, ok)
	}

	c.Purge()
	if _, ok := c.Get("hybrid|10|||-|-|전세"); ok {
		t.Fatalf("expected empty cache after purge")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after purge", c.Len())
	}

	want := []string{"hit", "purge", "miss"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestCacheEvictsOldestBeyondCapacity(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	c.Add("a", domain.SearchResponse{Query: "a"})
	c.Add("b", domain.SearchResponse{Query: "b"})
	c.Add("c", domain.SearchResponse{Query: "c"})

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected newest entry retained")
	}
}

func TestCacheDefaultsSizeWhenNonPositive(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New(0) error = %v", err)
	}
	c.Add("k", domain.SearchResponse{})
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
