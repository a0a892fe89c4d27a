package handlers

import (
	"net/http"

	"github.com/pliu/chatsight/internal/chat"
	"github.com/pliu/chatsight/internal/respond"
)

type ChatHandler struct {
	Chat *chat.Service
}

type historyRequest struct {
	WithUserID UserID `json:"withUserId"`
}

type sendRequest struct {
	ReceiverID UserID `json:"receiver_id"`
	Text       string `json:"text"`
}

func (h *ChatHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Chat.ListUsers(r.Context(), viewer(r))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *ChatHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := decode(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	messages, err := h.Chat.ListConversation(r.Context(), viewer(r), int64(req.WithUserID))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// SendMessage persists the message. The sender's client publishes it on the
// relay once this returns.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decode(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	msg, err := h.Chat.Send(r.Context(), viewer(r), int64(req.ReceiverID), req.Text)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": msg})
}
