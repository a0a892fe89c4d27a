// Package insight produces and caches a short summary and sentiment label
// for a two-person conversation.
//
// A conversation's insight is computed at most once per stored row: the
// newest row for a conversation is always served, and nothing refreshes it
// when later messages arrive. The existence check and the insert are not
// atomic, so two first requests may both compute and store; readers take the
// newest row.
package insight

import (
	"context"
	"errors"

	"github.com/pliu/chatsight/internal/apperrors"
	"github.com/pliu/chatsight/internal/llm"
	"github.com/pliu/chatsight/internal/logger"
	"github.com/pliu/chatsight/internal/metrics"
	"github.com/pliu/chatsight/internal/models"
	"github.com/pliu/chatsight/internal/store"
	"go.uber.org/zap"
)

const systemPrompt = `You are an assistant that summarises chat conversations. Reply strictly in JSON with the shape {"summary":"four or five words summarising the first message's theme","sentiment":"Positive|Negative|Neutral|Mixed"}.`

// Result is the response body of an insight request. Insight is nil when
// nothing is durably stored for the conversation.
type Result struct {
	OK             bool            `json:"ok"`
	ConversationID string          `json:"conversationId"`
	Summary        string          `json:"summary"`
	Sentiment      string          `json:"sentiment"`
	Insight        *models.Insight `json:"insight"`
	Cached         bool            `json:"cached"`
}

type Options struct {
	Model       string
	Temperature float64
}

type Service struct {
	store    store.Store
	provider llm.Provider
	opts     Options
}

// NewService returns a service. A nil provider leaves the service
// unconfigured: every Generate call fails with ErrInsightUnconfigured.
func NewService(s store.Store, provider llm.Provider, opts Options) *Service {
	return &Service{store: s, provider: provider, opts: opts}
}

func (s *Service) Configured() bool {
	return s.provider != nil
}

func (s *Service) Generate(ctx context.Context, viewerID, partnerID int64) (*Result, error) {
	if s.provider == nil {
		return nil, apperrors.ErrInsightUnconfigured
	}
	if partnerID == 0 {
		return nil, apperrors.ErrMissingPartner
	}

	conversationID := ConversationID(viewerID, partnerID)
	log := logger.L().With(zap.String("conversation_id", conversationID))

	cached, err := s.store.LatestInsight(ctx, conversationID)
	switch {
	case err == nil:
		metrics.InsightRequests.WithLabelValues(metrics.OutcomeCached).Inc()
		sentiment := cached.Sentiment
		if sentiment == "" {
			sentiment = SentimentNeutral
		}
		return &Result{
			OK:             true,
			ConversationID: conversationID,
			Summary:        cached.Summary,
			Sentiment:      sentiment,
			Insight:        cached,
			Cached:         true,
		}, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperrors.ErrStore(err)
	}

	messages, err := s.store.GetConversation(ctx, viewerID, partnerID)
	if err != nil {
		return nil, apperrors.ErrStore(err)
	}
	if len(messages) == 0 {
		metrics.InsightRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
		return &Result{
			OK:             true,
			ConversationID: conversationID,
			Sentiment:      SentimentNeutral,
		}, nil
	}

	lines := make([]Line, len(messages))
	for i, m := range messages {
		lines[i] = Line{SenderID: m.SenderID, Text: m.Text}
	}
	temperature := s.opts.Temperature
	resp, err := s.provider.Complete(ctx, llm.Request{
		Model:       s.opts.Model,
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: Transcript(viewerID, lines)}},
		Temperature: &temperature,
	})
	if err != nil {
		metrics.InsightRequests.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		log.Error("insight generation failed", zap.Error(err))
		return nil, apperrors.ErrUpstream(err)
	}

	content := resp.Content
	if content == "" {
		content = "{}"
	}
	summary, sentiment, ok := parseCompletion(content)
	if !ok {
		log.Warn("unparseable insight completion", zap.String("content", content))
	}

	result := &Result{
		OK:             true,
		ConversationID: conversationID,
		Summary:        summary,
		Sentiment:      sentiment,
	}

	row := &models.Insight{ConversationID: conversationID, Summary: summary, Sentiment: sentiment}
	if err := s.store.SaveInsight(ctx, row); err != nil {
		metrics.InsightRequests.WithLabelValues(metrics.OutcomeStoreFailed).Inc()
		log.Error("failed to store insight", zap.Error(err))
		return result, nil
	}

	metrics.InsightRequests.WithLabelValues(metrics.OutcomeComputed).Inc()
	result.Insight = row
	return result, nil
}
