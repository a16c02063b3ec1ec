package usecase

import (
	"strings"
	"testing"
)

func TestEnhancePrependsMatchedTerms(t *testing.T) {
	enhancer := NewQueryEnhancer(nil)

	got := enhancer.Enhance("전세 보증금을 돌려받고 싶어요")
	want := "전세 보증금\n전세 보증금을 돌려받고 싶어요"
	if got != want {
		t.Fatalf("Enhance() = %q, want %q", got, want)
	}
}

func TestEnhanceMatchesTermWithParticleSuffix(t *testing.T) {
	enhancer := NewQueryEnhancer(nil)

	got := enhancer.Enhance("확정일자는 언제 받아야 하나요?")
	if !strings.HasPrefix(got, "확정일자\n") {
		t.Fatalf("expected 확정일자 title line, got %q", got)
	}
}

func TestEnhanceCapsAtThreeDistinctTerms(t *testing.T) {
	enhancer := NewQueryEnhancer(nil)

	got := enhancer.Enhance("전세 월세 보증금 등기 임대차")
	title := strings.SplitN(got, "\n", 2)[0]
	terms := strings.Fields(title)
	if len(terms) != 3 {
		t.Fatalf("expected 3 title terms, got %d (%q)", len(terms), title)
	}
	if terms[0] != "전세" || terms[1] != "월세" || terms[2] != "보증금" {
		t.Fatalf("expected first-seen order 전세 월세 보증금, got %v", terms)
	}
}

func TestEnhanceDeduplicatesRepeatedTerms(t *testing.T) {
	enhancer := NewQueryEnhancer(nil)

	got := enhancer.Enhance("보증금 보증금을 보증금은 전세")
	title := strings.SplitN(got, "\n", 2)[0]
	if title != "보증금 전세" {
		t.Fatalf("expected deduplicated title 보증금 전세, got %q", title)
	}
}

func TestEnhancePassesThroughWithoutKnownTerms(t *testing.T) {
	enhancer := NewQueryEnhancer(nil)

	for _, query := range []string{"", "   ", "hello world", "오늘 날씨 어때?"} {
		if got := enhancer.Enhance(query); got != query {
			t.Fatalf("Enhance(%q) = %q, want passthrough", query, got)
		}
	}
}

func TestEnhanceUsesCustomVocabulary(t *testing.T) {
	enhancer := NewQueryEnhancer([]string{"분양권"})

	got := enhancer.Enhance("분양권 전매 제한")
	if !strings.HasPrefix(got, "분양권\n") {
		t.Fatalf("expected custom term match, got %q", got)
	}
	if got := enhancer.Enhance("전세 계약"); got != "전세 계약" {
		t.Fatalf("default vocabulary should be replaced, got %q", got)
	}
}
