package utils_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/dashkit/internal/utils"
)

func TestWords(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"simple", "Great product, works WELL!", []string{"great", "product", "works", "well"}},
		{"apostrophe", "Don't buy", []string{"dont", "buy"}},
		{"digits", "4K TV 55in", []string{"4k", "tv", "55in"}},
	}
	for _, c := range cases {
		got := utils.Words(c.in)
		if strings.Join(got, "|") != strings.Join(c.want, "|") {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestStopWords(t *testing.T) {
	for _, w := range []string{"the", "and", "br"} {
		if !utils.IsStopWord(w) {
			t.Errorf("%q should be a stop word", w)
		}
	}
	if utils.IsStopWord("battery") {
		t.Errorf("battery is not a stop word")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("abcd ", 20)
	got := utils.Truncate(long, 12)
	if len([]rune(got)) != 12 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
	if utils.Truncate("short", 12) != "short" {
		t.Fatalf("short strings must pass through")
	}
	if utils.Truncate("abc", 0) != "" {
		t.Fatalf("zero limit must yield empty string")
	}
}

func TestSlug(t *testing.T) {
	if got := utils.Slug("Median Price by Month"); got != "median-price-by-month" {
		t.Fatalf("got %q", got)
	}
	if got := utils.Slug("!!!"); got != "chart" {
		t.Fatalf("got %q", got)
	}
}
