package insight

import (
	"strconv"
	"strings"
)

// ConversationID derives the key for the conversation between a and b. The
// ids are compared as strings, so the result does not depend on argument order.
func ConversationID(a, b int64) string {
	x, y := strconv.FormatInt(a, 10), strconv.FormatInt(b, 10)
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// Transcript renders messages oldest first, labelling each line relative to viewerID.
func Transcript(viewerID int64, lines []Line) string {
	var b strings.Builder
	b.WriteString("Conversation transcript:\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if l.SenderID == viewerID {
			b.WriteString("Current user: ")
		} else {
			b.WriteString("Chat partner: ")
		}
		b.WriteString(l.Text)
	}
	return b.String()
}

type Line struct {
	SenderID int64
	Text     string
}
