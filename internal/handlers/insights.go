package handlers

import (
	"net/http"

	"github.com/pliu/chatsight/internal/insight"
	"github.com/pliu/chatsight/internal/respond"
)

type InsightHandler struct {
	Insights *insight.Service
}

func (h *InsightHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := decode(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	res, err := h.Insights.Generate(r.Context(), viewer(r), int64(req.WithUserID))
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
