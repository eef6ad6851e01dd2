package matcher

import "strings"

// stopWords are filtered out of keyword extraction. The user base writes in
// a mix of Chinese and English, so both lists are needed.
var stopWords = map[string]struct{}{
	// Chinese
	"的": {}, "是": {}, "在": {}, "了": {}, "和": {}, "與": {}, "及": {},
	"或": {}, "但": {}, "而": {},
	// English
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {},
}

const maxKeywords = 10

// isSeparator reports whether r splits tokens. Covers ASCII punctuation and
// the full-width punctuation used in Chinese text.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r',
		',', '.', '!', '?', ';', ':',
		'，', '。', '！', '？', '、', '；', '：',
		'"', '\'', '“', '”', '‘', '’',
		'（', '）', '【', '】', '《', '》':
		return true
	}
	return false
}

// extractKeywords splits text on whitespace and punctuation, drops stop
// words and single-character tokens, and caps the result at maxKeywords.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(text, isSeparator)

	var keywords []string
	for _, word := range fields {
		if len([]rune(word)) <= 1 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
