package utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "arabic headline", title: "الأخبار العاجلة اليوم", want: "alakhbar-alaajlh-alyoom"},
		{name: "single arabic word", title: "تجربة", want: "tjrbh"},
		{name: "tashkeel stripped", title: "مُحَمَّد", want: "mhmd"},
		{name: "lam alef ligature", title: "ﻻ", want: "la"},
		{name: "lam alef with hamza below ligature", title: "\uFEF9", want: "la"},
		{name: "presentation forms", title: "\uFE97\uFEA0\uFEAE\uFE91\uFE94", want: "tjrbh"},
		{name: "allah ligature", title: "\uFDF2", want: "allh"},
		{name: "fullwidth latin", title: "\uFF27\uFF4F News", want: "go-news"},
		{name: "arabic-indic digits", title: "عام ٢٠٢٤", want: "aam-2024"},
		{name: "persian letters", title: "پیام", want: "pyam"},
		{name: "latin diacritics", title: "Café au Lait", want: "cafe-au-lait"},
		{name: "punctuation collapses", title: "  Hello, World!  ", want: "hello-world"},
		{name: "dotted version", title: "Go 1.22 Release", want: "go-1-22-release"},
		{name: "hyphens trimmed", title: "---x---", want: "x"},
		{name: "empty falls back", title: "", want: SlugPlaceholder},
		{name: "symbols only falls back", title: "!!!", want: SlugPlaceholder},
		{name: "untransliterable script falls back", title: "日本語", want: SlugPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.title))
		})
	}
}

func TestGenerateSlug_Deterministic(t *testing.T) {
	titles := []string{"الأخبار العاجلة اليوم", "تجربة", "Café au Lait", ""}
	for _, title := range titles {
		first := GenerateSlug(title)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, GenerateSlug(title), "title %q", title)
		}
	}
}

func TestGenerateSlug_LengthCap(t *testing.T) {
	title := strings.Repeat("abcdefghi ", 20)

	slug := GenerateSlug(title)

	assert.LessOrEqual(t, len(slug), MaxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
	assert.Equal(t, strings.TrimSuffix(strings.Repeat("abcdefghi-", 10), "-"), slug)
}

func TestGenerateSlug_URLSafe(t *testing.T) {
	titles := []string{"الأخبار العاجلة اليوم", "a  --  b", "Straße", "  x  "}
	for _, title := range titles {
		slug := GenerateSlug(title)
		for _, r := range slug {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, ok, "slug %q for %q contains %q", slug, title, r)
		}
		assert.NotContains(t, slug, "--")
	}
}

func TestNextAvailableSlug(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		taken     []string
		want      string
	}{
		{name: "free", candidate: "tjrbh", taken: nil, want: "tjrbh"},
		{name: "prefix match only", candidate: "tjrbh", taken: []string{"tjrbh-news"}, want: "tjrbh"},
		{name: "first collision", candidate: "tjrbh", taken: []string{"tjrbh"}, want: "tjrbh-2"},
		{name: "gap reused", candidate: "tjrbh", taken: []string{"tjrbh", "tjrbh-3"}, want: "tjrbh-2"},
		{name: "sequence", candidate: "tjrbh", taken: []string{"tjrbh", "tjrbh-2", "tjrbh-3"}, want: "tjrbh-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAvailableSlug(tt.candidate, tt.taken))
		})
	}
}

func TestNextAvailableSlug_IdenticalTitles(t *testing.T) {
	var taken []string
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		slug := NextAvailableSlug(GenerateSlug("تجربة"), taken)
		assert.False(t, seen[slug], "duplicate slug %q", slug)
		seen[slug] = true
		taken = append(taken, slug)
	}
	assert.Equal(t, "tjrbh", taken[0])
	assert.Equal(t, fmt.Sprintf("tjrbh-%d", 25), taken[24])
}
