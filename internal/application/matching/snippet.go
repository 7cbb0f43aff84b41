package matching

import (
	"sort"
	"strings"
)

// snippetLength is the default snippet window size in characters.
const snippetLength = 300

// snippetStep is the stride of the sliding window scan.
const snippetStep = 50

// snippetKeywords is how many prompt words anchor the window search.
const snippetKeywords = 5

// ellipsis marks a snippet cut off from the surrounding text.
const ellipsis = "…"

// ExtractSnippet returns the maxLength-character window of content that
// contains the most occurrences of the prompt's keywords, with an ellipsis
// on each side that does not touch a text boundary.  The window slides on
// rune boundaries so multibyte text is never split mid-character.
//
// Keywords are the five longest words of the prompt (ties keep prompt
// order).  A prompt with no usable keywords yields the leading window.
func ExtractSnippet(promptText, content string, maxLength int) string {
	if content == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = snippetLength
	}

	runes := []rune(content)

	keywords := longestWords(promptText, snippetKeywords)
	if len(keywords) == 0 {
		if len(runes) > maxLength {
			return string(runes[:maxLength]) + ellipsis
		}
		return content
	}
	if len(runes) <= maxLength {
		return content
	}

	bestStart := 0
	bestHits := 0
	for start := 0; start < len(runes)-maxLength; start += snippetStep {
		window := strings.ToLower(string(runes[start : start+maxLength]))
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(window, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestStart = start
		}
	}

	snippet := string(runes[bestStart : bestStart+maxLength])
	if bestStart > 0 {
		snippet = ellipsis + snippet
	}
	if bestStart+maxLength < len(runes) {
		snippet = snippet + ellipsis
	}
	return snippet
}

// longestWords picks the n longest words of text, preferring earlier words
// on equal length, and returns them lowercased.
func longestWords(text string, n int) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	type indexed struct {
		word string
		pos  int
	}
	candidates := make([]indexed, 0, len(words))
	for i, w := range words {
		if len(w) > 3 {
			candidates = append(candidates, indexed{word: w, pos: i})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i].word) != len(candidates[j].word) {
			return len(candidates[i].word) > len(candidates[j].word)
		}
		return candidates[i].pos < candidates[j].pos
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.word
	}
	return out
}
