// Package diff contains the change-detection engine: a free-text
// meaningfulness classifier for raw page content, a structured differ for
// pricing schemas, and a cross-region comparator.
package diff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pricelens/pricewatch"
)

// minChangedChars is the floor below which changed text is treated as no
// change at all.
const minChangedChars = 10

// substantialChangeChars is the fallback threshold: changed text past this
// size is flagged meaningful even when no signal family matches, so large
// unexplained rewrites are never silently dropped.
const substantialChangeChars = 100

// SignalFamily is one keyword/pattern family tested against changed text.
type SignalFamily struct {
	Type     pricewatch.SignalType
	Patterns []*regexp.Regexp
}

// PatternTable holds the classifier's signal and noise patterns. The
// matching engine is fixed; the tables are data so behavior can be tuned
// and tested independently.
type PatternTable struct {
	// Families are tested in order; the first match wins.
	Families []SignalFamily

	// Noise matches boilerplate churn that never constitutes signal.
	Noise []*regexp.Regexp
}

// DefaultPatterns returns the built-in pattern table.
func DefaultPatterns() *PatternTable {
	return &PatternTable{
		Families: []SignalFamily{
			{
				Type: pricewatch.SignalPricing,
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`[$€£₹]\s?\d`),
					regexp.MustCompile(`(?i)\d\s?(USD|EUR|GBP|INR)\b`),
					regexp.MustCompile(`(?i)/\s?(mo|month|yr|year)\b`),
					regexp.MustCompile(`(?i)\bper\s+(month|year|user|seat)\b`),
					regexp.MustCompile(`(?i)\bfree\s+trial\b`),
					regexp.MustCompile(`(?i)\d+\s?%\s?(off|discount)`),
				},
			},
			{
				Type: pricewatch.SignalPlan,
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(starter|basic|pro|professional|premium|business|enterprise|team|growth|scale|plus)\s+(plan|tier)\b`),
					regexp.MustCompile(`(?i)\b(plan|tier)s?\b`),
				},
			},
			{
				Type: pricewatch.SignalCTA,
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(get started|start (for )?free|start trial|sign up|buy now|subscribe|upgrade|contact sales|book a demo|request a demo)\b`),
				},
			},
			{
				Type: pricewatch.SignalFeature,
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`[✓✔]`),
					regexp.MustCompile(`(?i)\bunlimited\b`),
					regexp.MustCompile(`(?i)\bup to \d`),
					regexp.MustCompile(`(?i)\d+\s?(users?|seats?|credits?|projects?|requests?|gb|tb)\b`),
					regexp.MustCompile(`(?i)\bincluded\b`),
				},
			},
			{
				Type: pricewatch.SignalPositioning,
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(most popular|best value|#1|leading|fastest|all-in-one|trusted by|loved by)\b`),
				},
			},
		},
		Noise: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(©|\(c\)|copyright)\s*\d{4}`),
			regexp.MustCompile(`^\s*\d{4}\s*$`),
			regexp.MustCompile(`(?i)\b(privacy policy|terms of (service|use)|all rights reserved)\b`),
			regexp.MustCompile(`(?i)\bcookies?\s+(policy|settings|preferences|consent)\b`),
			regexp.MustCompile(`(?i)\bwe use cookies\b`),
		},
	}
}

// Classifier decides whether a raw-text change is competitively meaningful.
// It is advisory text-level triage, looser than the structured differ.
type Classifier struct {
	patterns *PatternTable
}

// NewClassifier creates a Classifier. A nil table uses DefaultPatterns.
func NewClassifier(patterns *PatternTable) *Classifier {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Classifier{patterns: patterns}
}

// Classify compares two texts and reports whether the change carries
// competitive signal, and of what type.
func (c *Classifier) Classify(oldText, newText string) pricewatch.TextClassification {
	if pricewatch.HashContent(oldText) == pricewatch.HashContent(newText) {
		return pricewatch.TextClassification{Reason: "content unchanged"}
	}

	changed := changedBlocks(oldText, newText)
	total := 0
	for _, b := range changed {
		total += len(b)
	}
	if total < minChangedChars {
		return pricewatch.TextClassification{Reason: "changed text below minimum threshold"}
	}

	combined := strings.Join(changed, "\n")

	for _, family := range c.patterns.Families {
		for _, p := range family.Patterns {
			if p.MatchString(combined) {
				return pricewatch.TextClassification{
					IsMeaningful: true,
					Reason:       fmt.Sprintf("matched %s signal pattern", family.Type),
					SignalType:   family.Type,
				}
			}
		}
	}

	if c.onlyNoise(changed) {
		return pricewatch.TextClassification{Reason: "only boilerplate changes detected"}
	}

	if total > substantialChangeChars {
		return pricewatch.TextClassification{
			IsMeaningful: true,
			Reason:       fmt.Sprintf("substantial change of %d chars with no matched family", total),
		}
	}

	return pricewatch.TextClassification{Reason: "no signal patterns matched"}
}

// onlyNoise reports whether every changed block matches a noise pattern.
func (c *Classifier) onlyNoise(blocks []string) bool {
	for _, block := range blocks {
		matched := false
		for _, p := range c.patterns.Noise {
			if p.MatchString(block) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return len(blocks) > 0
}

// changedBlocks splits both texts into sentence-like blocks and returns the
// symmetric set difference: blocks present on one side only. Reordering
// identical blocks is not a change.
func changedBlocks(oldText, newText string) []string {
	oldSet := blockSet(oldText)
	newSet := blockSet(newText)

	var changed []string
	for _, b := range splitBlocks(oldText) {
		if !newSet[b] {
			changed = append(changed, b)
		}
	}
	for _, b := range splitBlocks(newText) {
		if !oldSet[b] {
			changed = append(changed, b)
		}
	}
	return changed
}

func blockSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, b := range splitBlocks(text) {
		set[b] = true
	}
	return set
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+|\n`)

// splitBlocks breaks text into trimmed, deduplicated sentence-like blocks.
func splitBlocks(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	seen := make(map[string]bool, len(parts))
	var blocks []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < 3 || seen[p] {
			continue
		}
		seen[p] = true
		blocks = append(blocks, p)
	}
	return blocks
}
