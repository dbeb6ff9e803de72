// internal/censor/censor.go

// Package censor masks configured banned words in outgoing text.
package censor

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultMask is the rune used to overwrite banned words.
const DefaultMask = '*'

// Filter masks banned words at a configured intensity. A level of zero or
// below disables masking entirely.
type Filter struct {
	Mask rune
}

// New returns a filter using the given mask rune, or DefaultMask when zero.
func New(mask rune) Filter {
	if mask == 0 {
		mask = DefaultMask
	}
	return Filter{Mask: mask}
}

// Apply replaces every case-insensitive occurrence of each banned word with
// an equal-length run of the mask rune. Words are applied longest-first,
// ties broken lexicographically, so overlapping matches resolve
// deterministically. Matching is whole-substring, not word-boundary-aware.
func (f Filter) Apply(text string, banned []string, level int) string {
	if level <= 0 || len(banned) == 0 || text == "" {
		return text
	}

	words := make([]string, 0, len(banned))
	for _, w := range banned {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, strings.ToLower(w))
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	runes := []rune(text)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}

	mask := f.Mask
	if mask == 0 {
		mask = DefaultMask
	}

	for _, word := range words {
		needle := []rune(word)
		for start := 0; start+len(needle) <= len(lowered); {
			if !runesMatch(lowered[start:start+len(needle)], needle) {
				start++
				continue
			}
			for i := start; i < start+len(needle); i++ {
				runes[i] = mask
				lowered[i] = mask
			}
			start += len(needle)
		}
	}
	return string(runes)
}

func runesMatch(window, needle []rune) bool {
	for i := range needle {
		if window[i] != needle[i] {
			return false
		}
	}
	return true
}
