package doctype

import (
	"math"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Result is the scored outcome of ClassifyDetailed.
type Result struct {
	Category        Category `json:"category" yaml:"category"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`
}

// keywordIndex compiles every keyword into one automaton so a filename is
// scanned once regardless of table size.
type keywordIndex struct {
	matcher    *ahocorasick.Matcher
	dictionary []string
}

var index = newKeywordIndex(keywordRules)

func newKeywordIndex(rules []keywordRule) *keywordIndex {
	seen := make(map[string]struct{})
	dictionary := make([]string, 0, len(rules)*8)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			dictionary = append(dictionary, kw)
		}
	}
	return &keywordIndex{
		matcher:    ahocorasick.NewStringMatcher(dictionary),
		dictionary: dictionary,
	}
}

// present returns the set of dictionary keywords contained in text.
func (ix *keywordIndex) present(text string) map[string]struct{} {
	if text == "" {
		return nil
	}
	hits := ix.matcher.MatchThreadSafe([]byte(text))
	if len(hits) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		if hit < 0 || hit >= len(ix.dictionary) {
			continue
		}
		out[ix.dictionary[hit]] = struct{}{}
	}
	return out
}

func normalize(filename string) string {
	return strings.ToLower(filename)
}

// ClassifySimple returns the first category, in fixed priority order,
// whose keywords occur in filename. Photo is decided last and only by image
// extension. A filename carrying keywords of several categories resolves to
// the earliest one: "領収書_図面.pdf" is a receipt.
func ClassifySimple(filename string) Category {
	text := normalize(filename)
	found := index.present(text)

	if len(found) > 0 {
		for _, c := range simpleOrder {
			for _, kw := range rulesByCategory[c].keywords {
				if _, ok := found[kw]; ok {
					return c
				}
			}
		}
	}

	for _, ext := range photoExtensions {
		if strings.HasSuffix(text, ext) {
			return Photo
		}
	}
	return Unknown
}

// ClassifyDetailed scores every category by the share of its keywords found
// in filename, scaled by the category weight and capped at 1. The best
// score wins; on a tie the category earlier in the table wins.
//
// MatchedKeywords carries the evidence from every category, in table order,
// not only from the winner.
func ClassifyDetailed(filename string) Result {
	found := index.present(normalize(filename))
	if len(found) == 0 {
		return unknownResult()
	}

	best := Unknown
	bestScore := 0.0
	matched := make([]string, 0, len(found))

	for _, rule := range keywordRules {
		count := 0
		for _, kw := range rule.keywords {
			if _, ok := found[kw]; !ok {
				continue
			}
			matched = append(matched, kw)
			count++
		}
		if count == 0 || len(rule.keywords) == 0 {
			continue
		}

		score := math.Min(1.0, float64(count)*rule.weight/float64(len(rule.keywords)))
		if score > bestScore {
			best = rule.category
			bestScore = score
		}
	}

	if bestScore <= 0 {
		return unknownResult()
	}
	return Result{
		Category:        best,
		Confidence:      bestScore,
		MatchedKeywords: matched,
	}
}

func unknownResult() Result {
	return Result{
		Category:        Unknown,
		Confidence:      0,
		MatchedKeywords: []string{},
	}
}
