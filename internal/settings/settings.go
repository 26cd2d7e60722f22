// Package settings defines the chatbot settings document, its value ranges
// and the per-bot defaults.
package settings

import (
	"fmt"
	"math"
	"strings"
)

// ClampTemperature limits t to [0, 2].
func ClampTemperature(t float64) float64 {
	return math.Min(math.Max(t, 0), 2)
}

// ClampTopP limits p to [0, 1].
func ClampTopP(p float64) float64 {
	return math.Min(math.Max(p, 0), 1)
}

// ClampThreshold limits a RAG similarity threshold to [0, 1].
func ClampThreshold(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}

// ClampMaxTokens floors m and keeps it at least 1.
func ClampMaxTokens(m float64) int {
	f := math.Floor(m)
	if math.IsNaN(f) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParsePick parses a no-match pick policy. Empty input means first.
func ParsePick(raw string) (Pick, error) {
	switch Pick(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PickFirst:
		return PickFirst, nil
	case PickRandom:
		return PickRandom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPick, raw)
}

// ParseSource parses a rule source. Empty input means faq.
func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SourceFAQ:
		return SourceFAQ, nil
	case SourceFallback:
		return SourceFallback, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
}

// Valid reports whether a rule would survive collection: at least one
// keyword and a non-blank response.
func (r Rule) Valid() bool {
	return len(CleanStrings(r.Keywords)) > 0 && strings.TrimSpace(r.Response) != ""
}

// CleanStrings trims every item and drops the blank ones, keeping order.
func CleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SplitList splits a comma separated input into trimmed non-empty values.
func SplitList(raw string) []string {
	return CleanStrings(strings.Split(raw, ","))
}

// Clone returns a deep copy of d. Nil and empty lists are kept apart.
func (d Document) Clone() Document {
	out := d
	if d.Features.UseGenericNoMatch != nil {
		v := *d.Features.UseGenericNoMatch
		out.Features.UseGenericNoMatch = &v
	}
	out.MenuSuggestions = cloneSlice(d.MenuSuggestions)
	out.PrePrompts = cloneSlice(d.PrePrompts)
	out.AllowedDomains = cloneSlice(d.AllowedDomains)
	out.NoMatchReplies = cloneSlice(d.NoMatchReplies)
	out.Rules = CloneRules(d.Rules)
	return out
}

// CloneRules deep copies a rule list.
func CloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = cloneSlice(r.Keywords)
		out[i] = r
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Normalize applies the persisted-value invariants: numbers clamped, blank
// list entries and incomplete rules removed. The stored document always
// passes through it.
func Normalize(d Document) Document {
	out := d.Clone()
	out.Generation = Generation{
		Temperature: ClampTemperature(nonNaN(d.Generation.Temperature, DefaultTemperature)),
		TopP:        ClampTopP(nonNaN(d.Generation.TopP, DefaultTopP)),
		MaxTokens:   ClampMaxTokens(float64(d.Generation.MaxTokens)),
	}
	out.RAGThreshold = ClampThreshold(nonNaN(d.RAGThreshold, DefaultRAGThreshold))

	menu := make([]MenuItem, 0, len(d.MenuSuggestions))
	for _, item := range d.MenuSuggestions {
		label := strings.TrimSpace(item.Label)
		message := strings.TrimSpace(item.Message)
		if label == "" || message == "" {
			continue
		}
		menu = append(menu, MenuItem{Label: label, Message: message})
	}
	out.MenuSuggestions = menu

	rules := make([]Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		if !r.Valid() {
			continue
		}
		src, err := ParseSource(string(r.Source))
		if err != nil {
			src = SourceFAQ
		}
		rules = append(rules, Rule{
			Enabled:  r.Enabled,
			Keywords: CleanStrings(r.Keywords),
			Response: strings.TrimSpace(r.Response),
			Source:   src,
		})
	}
	out.Rules = rules

	out.PrePrompts = CleanStrings(d.PrePrompts)
	out.AllowedDomains = CleanStrings(d.AllowedDomains)
	if d.NoMatchReplies != nil {
		out.NoMatchReplies = CleanStrings(d.NoMatchReplies)
	}
	if d.NoMatchPick != "" {
		pick, err := ParsePick(string(d.NoMatchPick))
		if err != nil {
			pick = PickFirst
		}
		out.NoMatchPick = pick
	}
	return out
}

func nonNaN(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
