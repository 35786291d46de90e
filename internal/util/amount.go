package util

import (
	"strconv"
	"strings"
	"unicode"
)

// amountSynonyms collapses the many Korean quantity expressions into a small
// canonical set before portion estimation. Order matters: longer forms first.
var amountSynonyms = [][2]string{
	{"뚝배기", "그릇"}, {"1뚝배기", "1그릇"},
	{"인분", "그릇"}, {"1인분", "1그릇"}, {"한인분", "한그릇"},
	{"사발", "그릇"}, {"1사발", "1그릇"}, {"한사발", "한그릇"},
	{"한토막", "한조각"}, {"1토막", "1조각"},
	{"한덩이", "한개"}, {"1덩이", "1개"},
	{"한줌", "한개"}, {"1줌", "1개"},
	{"한모", "한개"}, {"1모", "1개"},
	{"한장", "한개"}, {"1장", "1개"},
	{"한입", "한개"}, {"1입", "1개"},
	{"한알", "한개"}, {"1알", "1개"},
	{"한봉지", "한개"}, {"1봉지", "1개"},
	{"한캔", "한개"}, {"1캔", "1개"},
	{"한병", "한개"}, {"1병", "1개"},
	{"한잔", "한컵"}, {"1잔", "1컵"},
	{"한판", "한개"}, {"1판", "1개"},
	{"한줄", "한개"}, {"1줄", "1개"},
	{"한쪽", "한조각"}, {"1쪽", "1조각"},
	{"한스푼", "한큰술"}, {"1스푼", "1큰술"},
	{"한숟가락", "한큰술"}, {"1숟가락", "1큰술"},
	{"한공기", "한그릇"}, {"1공기", "1그릇"},
}

// NormalizeAmount rewrites a free-form Korean quantity expression into its
// canonical synonym. Spaces are stripped first so "한 사발" and "한사발" match
// the same entry.
func NormalizeAmount(amount string) string {
	normalized := strings.ReplaceAll(amount, " ", "")
	for _, pair := range amountSynonyms {
		normalized = strings.ReplaceAll(normalized, pair[0], pair[1])
	}
	return normalized
}

// GramsFromText parses an explicit weight quantity out of text such as
// "150g", "200그램" or "2kg". It returns false when the text carries no
// weight marker, in which case the caller should fall back to the portion
// estimator.
func GramsFromText(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}
	lowered := strings.ToLower(trimmed)
	isKilo := strings.Contains(lowered, "kg") || strings.Contains(lowered, "킬로")
	if !isKilo && !strings.Contains(lowered, "g") && !strings.Contains(lowered, "그램") {
		return 0, false
	}
	number := leadingNumber(trimmed)
	if number == "" {
		return 0, false
	}
	grams, err := strconv.ParseFloat(number, 64)
	if err != nil || grams <= 0 {
		return 0, false
	}
	if isKilo {
		grams *= 1000
	}
	return grams, true
}

// leadingNumber extracts the first numeric token (digits and at most one
// decimal point) from the text.
func leadingNumber(text string) string {
	var builder strings.Builder
	seenDigit := false
	seenDot := false
	for _, r := range text {
		if unicode.IsDigit(r) {
			builder.WriteRune(r)
			seenDigit = true
			continue
		}
		if r == '.' && seenDigit && !seenDot {
			builder.WriteRune(r)
			seenDot = true
			continue
		}
		if seenDigit {
			break
		}
	}
	return strings.TrimSuffix(builder.String(), ".")
}
