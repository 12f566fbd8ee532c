// Package textproc is the pure-function text normaliser the inverted
// indices treat as an external collaborator: lowercase,
// punctuation/whitespace tokenisation, stop-word removal, stemming, and
// optional prefix k-gram expansion. None of this is durable state — it's
// stateless given its Options.
package textproc

import (
	"strings"
	"unicode"
)

// Options controls which normalisation stages Process runs, mirroring
// the original TTextProcessor::TOpts triple.
type Options struct {
	AddKGrams       bool
	AddStemming     bool
	RemoveStopWords bool

	// TrueKGramLength, when > 0, switches kGrams from the prefix-only
	// accelerator to true fixed-length k-grams (token[i:i+K] for every
	// valid i) — the corrected behaviour the design notes call for in
	// place of the prefix-only generator, offered as an option since the
	// pattern index's default ingestion path still wants prefixes.
	TrueKGramLength int
}

// Default matches the word index's ingestion path: stop words removed,
// stemming on, no k-grams.
var Default = Options{AddStemming: true, RemoveStopWords: true}

// Exact turns off every normalisation stage beyond lowercasing and
// tokenising — used for literal, already-normalised lookups.
var Exact = Options{}

// KGrams is the pattern index's ingestion path: stop words removed, no
// stemming, k-grams on.
var KGrams = Options{AddKGrams: true, RemoveStopWords: true}

var stopWords = map[string]bool{
	"the": true, "and": true, "is": true, "in": true,
	"at": true, "of": true, "a": true, "on": true,
}

// Process normalises text into a token stream per opts.
func Process(text string, opts Options) []string {
	text = strings.ToLower(text)
	text = stripPunctuation(text)
	tokens := strings.Fields(text)

	if opts.RemoveStopWords {
		tokens = filterOut(tokens, stopWords)
	}

	if opts.AddStemming {
		for i, t := range tokens {
			tokens[i] = stem(t)
		}
	}

	if opts.AddKGrams {
		var grams []string
		for _, t := range tokens {
			if opts.TrueKGramLength > 0 {
				grams = append(grams, trueKGrams(t, opts.TrueKGramLength)...)
			} else {
				grams = append(grams, kGrams(t)...)
			}
		}
		return grams
	}

	return tokens
}

// trueKGrams emits every contiguous length-k substring of token, for
// when a caller asks for actual k-grams rather than the prefix
// accelerator.
func trueKGrams(token string, k int) []string {
	if k <= 0 || k > len(token) {
		return nil
	}
	grams := make([]string, 0, len(token)-k+1)
	for i := 0; i+k <= len(token); i++ {
		grams = append(grams, token[i:i+k])
	}
	return grams
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func filterOut(tokens []string, drop map[string]bool) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if !drop[t] {
			out = append(out, t)
		}
	}
	return out
}

// kGrams emits the prefix-accelerator k-gram sequence the pattern index
// relies on: for k = 1..len(token), the length-k prefix of token. A true
// k-gram index would emit token[i:i+k] for every valid offset i (see
// trueKGrams above). With prefixes alone, a patternindex query segment
// finds candidates only where it is a prefix of some token; a segment
// that occurs only inside a word (e.g. "ell" in "hello") matches nothing.
func kGrams(token string) []string {
	if token == "" {
		return nil
	}
	grams := make([]string, 0, len(token))
	for k := 1; k <= len(token); k++ {
		grams = append(grams, token[:k])
	}
	return grams
}

// stem applies a small set of common English suffix-stripping rules. It
// is a deliberately modest stand-in for the original's Oleander Porter
// stemmer — stemming quality is explicitly out of scope for this module
// and no stemming library appears anywhere in the retrieval pack.
func stem(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minStem     int
	}{
		{"ational", "", 3},
		{"ization", "", 3},
		{"ation", "", 3},
		{"edly", "e", 3},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ed", "", 3},
		{"es", "", 3},
		{"s", "", 3},
	}

	for _, s := range suffixes {
		if strings.HasSuffix(word, s.suffix) && len(word)-len(s.suffix) >= s.minStem {
			stemmed := word[:len(word)-len(s.suffix)] + s.replacement
			if s.suffix == "ing" && needsSilentE(stemmed) {
				stemmed += "e"
			}
			return stemmed
		}
	}
	return word
}

// needsSilentE reports whether a stem left by stripping "ing" looks like
// it lost a silent e (a short consonant-vowel-consonant tail, e.g.
// "hav" from "having" wants to become "have").
func needsSilentE(stem string) bool {
	if len(stem) < 2 {
		return false
	}
	last := rune(stem[len(stem)-1])
	prev := rune(stem[len(stem)-2])
	return !isVowel(last) && isVowel(prev)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
