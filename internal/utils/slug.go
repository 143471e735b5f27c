package utils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// SlugPlaceholder is used when a title has no transliterable characters
	SlugPlaceholder = "item"

	// MaxSlugLength bounds the candidate slug, before any uniqueness suffix
	MaxSlugLength = 100
)

// transliteration maps Arabic-script runes to Latin. The table is policy:
// changing an entry changes every slug generated afterwards.
var transliteration = map[rune]string{
	'ا': "a", 'أ': "a", 'إ': "i", 'آ': "aa", 'ٱ': "a",
	'ب': "b", 'ت': "t", 'ث': "th", 'ج': "j", 'ح': "h",
	'خ': "kh", 'د': "d", 'ذ': "th", 'ر': "r", 'ز': "z",
	'س': "s", 'ش': "sh", 'ص': "s", 'ض': "d", 'ط': "t",
	'ظ': "z", 'ع': "a", 'غ': "gh", 'ف': "f", 'ق': "q",
	'ك': "k", 'ل': "l", 'م': "m", 'ن': "n", 'ه': "h",
	'و': "oo", 'ي': "y", 'ى': "a", 'ة': "h", 'ء': "",
	'ؤ': "o", 'ئ': "e",

	// Persian / Urdu letters
	'پ': "p", 'چ': "ch", 'ژ': "zh", 'گ': "g", 'ک': "k", 'ی': "y",

	// Arabic-Indic and extended Arabic-Indic digits
	'٠': "0", '١': "1", '٢': "2", '٣': "3", '٤': "4",
	'٥': "5", '٦': "6", '٧': "7", '٨': "8", '٩': "9",
	'۰': "0", '۱': "1", '۲': "2", '۳': "3", '۴': "4",
	'۵': "5", '۶': "6", '۷': "7", '۸': "8", '۹': "9",

	// Tatweel carries no sound
	'ـ': "",
}

// lamAlef ligatures always read "la". They are expanded before compatibility
// normalization, which would otherwise split them into lam plus a hamza seat.
var lamAlef = strings.NewReplacer(
	"ﻻ", "la", "ﻼ", "la", "ﻷ", "la", "ﻸ", "la",
	"ﻹ", "la", "ﻺ", "la", "ﻵ", "la", "ﻶ", "la",
)

// Transliterate lower-cases s and replaces mapped runes by their Latin form.
// Unmapped runes pass through unchanged. Input is NFKC-normalized first so
// presentation forms pasted from PDFs and decomposed hamza forms hit the
// same table entries as the base letters.
func Transliterate(s string) string {
	s = strings.ToLower(norm.NFKC.String(lamAlef.Replace(s)))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if latin, ok := transliteration[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripMarks removes combining marks (Arabic tashkeel, Latin accents) left
// after transliteration, so "café" becomes "cafe".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// GenerateSlug converts a title to a URL-safe slug candidate. It is pure:
// the same title always yields the same candidate.
func GenerateSlug(title string) string {
	s := stripMarks(Transliterate(strings.TrimSpace(title)))

	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")

	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
		if cut := strings.LastIndexByte(slug, '-'); cut > 0 {
			slug = slug[:cut]
		}
		slug = strings.Trim(slug, "-")
	}

	if slug == "" {
		return SlugPlaceholder
	}
	return slug
}

// NextAvailableSlug returns candidate if it is not taken, otherwise the first
// of candidate-2, candidate-3, ... that is free.
func NextAvailableSlug(candidate string, taken []string) string {
	set := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		set[s] = struct{}{}
	}
	if _, ok := set[candidate]; !ok {
		return candidate
	}
	for n := 2; ; n++ {
		next := candidate + "-" + strconv.Itoa(n)
		if _, ok := set[next]; !ok {
			return next
		}
	}
}
