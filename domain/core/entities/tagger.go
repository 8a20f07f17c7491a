package entities

import "strings"

// Tagger extracts significant keywords from idea text. Tags feed search
// and the graph read model; they are not used for autolink scoring.
type Tagger struct {
	maxTags   int
	stopWords map[string]bool
}

// NewTagger creates a tagger that returns at most maxTags keywords.
// maxTags <= 0 means unlimited.
func NewTagger(maxTags int) *Tagger {
	return &Tagger{
		maxTags: maxTags,
		stopWords: map[string]bool{
			"the": true, "a": true, "an": true, "and": true, "or": true,
			"but": true, "in": true, "on": true, "at": true, "to": true,
			"for": true, "of": true, "with": true, "is": true, "are": true,
			"was": true, "were": true, "be": true, "been": true, "being": true,
			"have": true, "has": true, "had": true, "do": true, "does": true,
			"did": true, "will": true, "would": true, "could": true, "should": true,
			"this": true, "that": true, "these": true, "those": true, "from": true,
			"into": true, "about": true, "than": true, "then": true, "they": true,
		},
	}
}

// Tags extracts keywords in order of first appearance, deduplicated.
func (t *Tagger) Tags(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	tags := []string{}

	seen := make(map[string]bool)
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")

		// Skip short words, stop words, and duplicates
		if len(word) > 3 && !t.stopWords[word] && !seen[word] {
			tags = append(tags, word)
			seen[word] = true
			if t.maxTags > 0 && len(tags) >= t.maxTags {
				break
			}
		}
	}

	return tags
}

// Overlap counts how many tags two sets share, for cheap relatedness hints.
func (t *Tagger) Overlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	count := 0
	for _, tag := range b {
		if set[tag] {
			count++
		}
	}
	return count
}
