// Package heuristic implements an entity extractor based on regular
// expressions and capitalisation. Its patterns also label the numeric and
// temporal mentions for the prose extractor.
package heuristic

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
)

const months = `January|February|March|April|May|June|July|August|September|October|November|December`

// Pattern is a labelled regular expression. Earlier patterns win when spans overlap.
type Pattern struct {
	Label string
	Regex string
}

// DefaultPatterns returns the built-in patterns for numeric, temporal and
// monetary mentions.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{ner.LabelMoney, `[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand|bn|mn|[kKmMbB])\b)?`},
		{ner.LabelMoney, `\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|dollars|euros|pounds)\b`},
		{ner.LabelPercent, `\b\d+(?:\.\d+)?(?:\s?%|\s?percent\b)`},
		{ner.LabelDate, `\b\d{4}-\d{2}-\d{2}\b`},
		{ner.LabelDate, `\b\d{1,2}(?:st|nd|rd|th)?\s+(?:` + months + `)(?:,?\s+\d{4})?\b`},
		{ner.LabelDate, `\b(?:` + months + `)(?:\s+\d{1,2}(?:st|nd|rd|th)?)?(?:,?\s+\d{4})?\b`},
		{ner.LabelDate, `\bQ[1-4]\s+\d{4}\b`},
		{ner.LabelDate, `\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`},
		{ner.LabelDate, `\b(?:1[6-9]|20)\d{2}s?\b`},
		{ner.LabelTime, `\b\d{1,2}:\d{2}(?:\s?[ap]\.?m\.?)?`},
		{ner.LabelOrdinal, `\b\d+(?:st|nd|rd|th)\b`},
		{ner.LabelOrdinal, `(?i)\b(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`},
		{ner.LabelCardinal, `\b\d[\d,]*(?:\.\d+)?\b`},
		{ner.LabelCardinal, `(?i)\b(?:zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|twenty|thirty|forty|fifty|hundred|thousand|million|billion|dozen)\b`},
	}
}

var (
	reWord = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}&'’.\-]*`)

	stopwords = toSet(
		"the", "a", "an", "this", "that", "these", "those", "in", "on", "at", "for", "from",
		"by", "with", "and", "but", "or", "if", "when", "while", "we", "i", "it", "he", "she",
		"they", "you", "our", "their", "his", "her", "its", "my", "your", "as", "to", "of",
		"is", "are", "was", "were", "be", "there", "here", "what", "which", "who", "how",
		"why", "all", "some", "many", "each", "every", "after", "before", "during", "also",
		"however", "although", "because", "since", "so", "then", "thus", "therefore", "no",
		"not", "yes", "do", "does", "did", "can", "could", "would", "should", "will", "mr",
		"mrs", "ms", "dr", "prof", "page", "table", "figure", "chapter", "section",
	)
	connectors = toSet("of", "de", "del", "da", "van", "von", "der", "den", "la", "le", "du")
	orgWords   = toSet(
		"corp", "corporation", "inc", "incorporated", "ltd", "llc", "plc", "gmbh", "ag",
		"co", "company", "group", "holdings", "bank", "university", "institute", "ministry",
		"agency", "association", "council", "committee", "foundation", "partners",
		"bureau", "commission", "department", "authority", "federation", "union", "society",
	)
)

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

type compiledPattern struct {
	label string
	regex *regexp.Regexp
}

type span struct {
	start, end int
	label      string
}

// Span is a labelled byte range [Start, End) of a text.
type Span struct {
	Start int
	End   int
	Label string
}

// HeuristicExtractor implements ner.Extractor using pattern matching for
// numeric and temporal mentions and capitalised word runs for names.
type HeuristicExtractor struct {
	patterns []compiledPattern
}

// NewHeuristicExtractor creates an extractor. Invalid patterns are skipped;
// an empty list uses DefaultPatterns.
func NewHeuristicExtractor(patterns ...Pattern) *HeuristicExtractor {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}

	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		compiled = append(compiled, compiledPattern{label: p.Label, regex: re})
	}
	return &HeuristicExtractor{patterns: compiled}
}

// ExtractEntities implements ner.Extractor.
func (h *HeuristicExtractor) ExtractEntities(ctx context.Context, text string) ([]ner.Mention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claimed := h.matchPatterns(text)
	claimed = append(claimed, properNouns(text, overlapsAny(claimed))...)

	sort.SliceStable(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })

	mentions := make([]ner.Mention, 0, len(claimed))
	for _, s := range claimed {
		mentions = append(mentions, ner.Mention{
			Text:  strings.TrimSpace(text[s.start:s.end]),
			Label: s.label,
		})
	}
	return mentions, nil
}

// MatchPatterns returns the non-overlapping pattern matches of text ordered
// by position. Capitalised names are not considered.
func (h *HeuristicExtractor) MatchPatterns(text string) []Span {
	claimed := h.matchPatterns(text)
	sort.SliceStable(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })

	spans := make([]Span, 0, len(claimed))
	for _, s := range claimed {
		spans = append(spans, Span{Start: s.start, End: s.end, Label: s.label})
	}
	return spans
}

func (h *HeuristicExtractor) matchPatterns(text string) []span {
	var claimed []span
	for _, p := range h.patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			if overlapsAny(claimed)(loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, span{start: loc[0], end: loc[1], label: p.label})
		}
	}
	return claimed
}

func overlapsAny(claimed []span) func(start, end int) bool {
	return func(start, end int) bool {
		for _, s := range claimed {
			if start < s.end && s.start < end {
				return true
			}
		}
		return false
	}
}

type token struct {
	start, end int
	word       string
	// terminal tokens end a sentence or abbreviation and close a name run
	terminal bool
}

func tokenize(text string) []token {
	locs := reWord.FindAllStringIndex(text, -1)
	tokens := make([]token, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		terminal := false
		for end > start {
			r, size := utf8.DecodeLastRuneInString(text[start:end])
			if !strings.ContainsRune(".'’-&", r) {
				break
			}
			if r == '.' {
				terminal = true
			}
			end -= size
		}
		if end == start {
			continue
		}
		tokens = append(tokens, token{start: start, end: end, word: text[start:end], terminal: terminal})
	}
	return tokens
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func isAcronym(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	for _, r := range word {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func sentenceInitial(text string, pos int) bool {
	prev := strings.TrimRightFunc(text[:pos], unicode.IsSpace)
	if prev == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(prev)
	return strings.ContainsRune(".!?•", r)
}

func joinable(gap string) bool {
	g := strings.TrimSpace(gap)
	return g == "" || g == "&"
}

// properNouns groups runs of capitalised tokens into name spans.
func properNouns(text string, overlaps func(start, end int) bool) []span {
	tokens := tokenize(text)

	candidate := func(t token) bool {
		return isCapitalized(t.word) && !overlaps(t.start, t.end)
	}

	// capitalised words seen mid-sentence are names even at a sentence start
	midSentence := make(map[string]struct{})
	for _, t := range tokens {
		if candidate(t) && !sentenceInitial(text, t.start) {
			midSentence[t.word] = struct{}{}
		}
	}

	var spans []span
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if !candidate(t) {
			continue
		}
		if _, stop := stopwords[strings.ToLower(t.word)]; stop {
			continue
		}

		last := i
		for !tokens[last].terminal {
			next := last + 1
			if next >= len(tokens) || !joinable(text[tokens[last].end:tokens[next].start]) {
				break
			}
			if candidate(tokens[next]) {
				last = next
				continue
			}
			_, conn := connectors[tokens[next].word]
			if conn && next+1 < len(tokens) && candidate(tokens[next+1]) &&
				joinable(text[tokens[next].end:tokens[next+1].start]) {
				last = next + 1
				continue
			}
			break
		}

		words := make([]string, 0, last-i+1)
		for j := i; j <= last; j++ {
			words = append(words, tokens[j].word)
		}

		if len(words) == 1 && sentenceInitial(text, t.start) && !isAcronym(t.word) {
			if _, ok := midSentence[t.word]; !ok {
				i = last
				continue
			}
		}

		spans = append(spans, span{start: t.start, end: tokens[last].end, label: labelFor(words)})
		i = last
	}
	return spans
}

func labelFor(words []string) string {
	for _, w := range words {
		if _, ok := orgWords[strings.ToLower(strings.TrimSuffix(w, "."))]; ok {
			return ner.LabelOrg
		}
	}
	if len(words) == 1 {
		w := words[0]
		if isAcronym(w) {
			return ner.LabelOrg
		}
		lw := strings.ToLower(w)
		if len(lw) > 4 {
			for _, suffix := range []string{"ian", "ese", "ish", "ean"} {
				if strings.HasSuffix(lw, suffix) {
					return ner.LabelNORP
				}
			}
		}
	}
	return ner.LabelMisc
}

// Ensure HeuristicExtractor implements ner.Extractor.
var _ ner.Extractor = (*HeuristicExtractor)(nil)
