package restock

import (
	"strings"
	"unicode"
)

// MatchStatus represents the status of a match operation
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Ingredient is a stock item a note line can resolve to.
type Ingredient struct {
	ID   int32
	Name string
	Unit string
}

// MatchResult contains the result of a matching operation
type MatchResult struct {
	Status     MatchStatus
	Ingredient *Ingredient  // when Matched
	Candidates []Ingredient // when Ambiguous
}

// Matcher resolves free-text descriptions to ingredients by name keywords.
type Matcher struct {
	items    []Ingredient
	keywords [][]string // pre-tokenized name per item
}

const (
	variantWeight = 5
	regularWeight = 1
)

// Words that tell otherwise similar ingredients apart. When the input
// names one, candidates without it are out.
var variantKeywords = map[string]bool{
	"black": true, "green": true, "oolong": true, "jasmine": true, "thai": true,
	"whole": true, "oat": true, "skim": true, "condensed": true,
	"brown": true, "white": true, "honey": true,
	"mango": true, "strawberry": true, "lychee": true, "passion": true, "taro": true,
}

// NewMatcher creates a Matcher with pre-tokenized ingredient names.
func NewMatcher(items []Ingredient) *Matcher {
	m := &Matcher{
		items:    items,
		keywords: make([][]string, len(items)),
	}
	for i, item := range items {
		m.keywords[i] = strings.Fields(normalize(item.Name))
	}
	return m
}

// Match resolves a description. An exact name wins outright; otherwise the
// highest keyword score wins and ties are Ambiguous.
func (m *Matcher) Match(text string) MatchResult {
	normalized := normalize(text)
	for i := range m.items {
		if normalize(m.items[i].Name) == normalized {
			return MatchResult{Status: Matched, Ingredient: &m.items[i]}
		}
	}

	inputTokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		inputTokens[singular(tok)] = true
	}

	inputVariants := make(map[string]bool)
	for tok := range inputTokens {
		if variantKeywords[tok] {
			inputVariants[tok] = true
		}
	}

	type scoredItem struct {
		item  Ingredient
		score int
	}
	var scored []scoredItem

	for i, item := range m.items {
		keywords := m.keywords[i]

		// Hard filter: if input contains variant keywords, candidate MUST have them
		if !hasAll(keywords, inputVariants) {
			continue
		}

		score := 0
		for _, kw := range keywords {
			if inputTokens[singular(kw)] {
				if variantKeywords[kw] {
					score += variantWeight
				} else {
					score += regularWeight
				}
			}
		}
		if score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}

	if len(scored) == 0 {
		return MatchResult{Status: Unmatched}
	}

	maxScore := 0
	for _, s := range scored {
		if s.score > maxScore {
			maxScore = s.score
		}
	}

	var top []Ingredient
	for _, s := range scored {
		if s.score == maxScore {
			top = append(top, s.item)
		}
	}

	if len(top) == 1 {
		return MatchResult{Status: Matched, Ingredient: &top[0]}
	}
	return MatchResult{Status: Ambiguous, Candidates: top}
}

func hasAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		found := false
		for _, kw := range keywords {
			if kw == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// singular drops a trailing "s" so "pearls" matches "pearl".
func singular(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}

// normalize lowercases and replaces non-alphanumeric runs with single spaces.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
