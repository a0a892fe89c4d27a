package insight

import (
	"encoding/json"
	"regexp"
	"strings"
)

const maxSummaryWords = 5

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

var summaryStrip = regexp.MustCompile(`[^\w\s'-]`)

// NormalizeSummary keeps word characters, whitespace, apostrophes and hyphens,
// then returns at most the first five words joined by single spaces.
func NormalizeSummary(s string) string {
	words := strings.Fields(summaryStrip.ReplaceAllString(s, " "))
	if len(words) > maxSummaryWords {
		words = words[:maxSummaryWords]
	}
	return strings.Join(words, " ")
}

// NormalizeSentiment lower-cases and trims s; anything outside the four
// known labels becomes neutral.
func NormalizeSentiment(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return v
	default:
		return SentimentNeutral
	}
}

// parseCompletion reads {"summary","sentiment"} from model output. Output that
// is not a JSON object counts as an empty object; non-string fields count as absent.
func parseCompletion(content string) (summary, sentiment string, ok bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &fields); err != nil || fields == nil {
		return "", SentimentNeutral, false
	}
	rawSummary, _ := fields["summary"].(string)
	rawSentiment, _ := fields["sentiment"].(string)
	return NormalizeSummary(rawSummary), NormalizeSentiment(rawSentiment), true
}
