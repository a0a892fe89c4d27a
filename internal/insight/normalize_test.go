package insight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSummary(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, world! This is   a test message", "Hello world This is a"},
		{"", ""},
		{"!!! ???", ""},
		{"Don't over-think it", "Don't over-think it"},
		{"  Planning\tthe\nweekend trip  ", "Planning the weekend trip"},
		{"snake_case stays", "snake_case stays"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSummary(tt.in))
		})
	}
}

func TestNormalizeSummaryIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, world! This is   a test message",
		"one two three four five six seven",
		"Quick: lunch plans?",
	}
	for _, in := range inputs {
		once := NormalizeSummary(in)
		assert.Equal(t, once, NormalizeSummary(once))
		assert.LessOrEqual(t, len(strings.Fields(once)), maxSummaryWords)
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := map[string]string{
		"POSITIVE":   "positive",
		" Positive ": "positive",
		"negative":   "negative",
		"Mixed":      "mixed",
		"neutral":    "neutral",
		"":           "neutral",
		"excited":    "neutral",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSentiment(in), "input %q", in)
	}
}

func TestParseCompletion(t *testing.T) {
	summary, sentiment, ok := parseCompletion(`{"summary":"Hi","sentiment":"Positive"}`)
	assert.True(t, ok)
	assert.Equal(t, "Hi", summary)
	assert.Equal(t, "positive", sentiment)

	summary, sentiment, ok = parseCompletion("Sure! Here is your summary.")
	assert.False(t, ok)
	assert.Empty(t, summary)
	assert.Equal(t, "neutral", sentiment)

	// null and non-string sentiment coerce to neutral
	summary, sentiment, ok = parseCompletion(`{"summary":"Weekend plans","sentiment":null}`)
	assert.True(t, ok)
	assert.Equal(t, "Weekend plans", summary)
	assert.Equal(t, "neutral", sentiment)

	_, sentiment, _ = parseCompletion(`{"sentiment":42}`)
	assert.Equal(t, "neutral", sentiment)

	_, _, ok = parseCompletion(`["not","an","object"]`)
	assert.False(t, ok)
}

func TestConversationIDSymmetric(t *testing.T) {
	pairs := [][2]int64{{1, 2}, {2, 1}, {9, 10}, {10, 9}, {42, 42}, {123, 7}}
	for _, p := range pairs {
		assert.Equal(t, ConversationID(p[0], p[1]), ConversationID(p[1], p[0]))
	}
	assert.Equal(t, "1:2", ConversationID(2, 1))
	// lexicographic, not numeric
	assert.Equal(t, "10:9", ConversationID(9, 10))
}

func TestTranscript(t *testing.T) {
	got := Transcript(1, []Line{
		{SenderID: 1, Text: "Hi"},
		{SenderID: 2, Text: "Hey there"},
	})
	assert.Equal(t, "Conversation transcript:\nCurrent user: Hi\nChat partner: Hey there", got)
}
