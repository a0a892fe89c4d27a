package sqlstore

import (
	"errors"
	"testing"

	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/store"
)

func TestLatestInsight(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	if _, err := testStore.LatestInsight(t.Context(), "1:2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	first := &models.Insight{ConversationID: "1:2", Summary: "Old", Sentiment: "neutral"}
	second := &models.Insight{ConversationID: "1:2", Summary: "New", Sentiment: "positive"}
	other := &models.Insight{ConversationID: "1:3", Summary: "Other", Sentiment: "mixed"}
	for _, in := range []*models.Insight{first, second, other} {
		if err := testStore.SaveInsight(t.Context(), in); err != nil {
			t.Fatalf("SaveInsight failed: %v", err)
		}
		if in.ID == 0 {
			t.Error("Expected insight ID to be assigned")
		}
	}

	got, err := testStore.LatestInsight(t.Context(), "1:2")
	if err != nil {
		t.Fatalf("LatestInsight failed: %v", err)
	}
	if got.ID != second.ID || got.Summary != "New" || got.Sentiment != "positive" {
		t.Errorf("Expected most recent row, got %+v", got)
	}
}
