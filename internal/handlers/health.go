package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pliu/chatsight/internal/logger"
	"github.com/pliu/chatsight/internal/respond"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PeerCounter interface {
	Peers() int
}

// HealthHandler reports database reachability and relay occupancy.
type HealthHandler struct {
	DB    Pinger
	Relay PeerCounter
	Now   func() time.Time
}

type healthResponse struct {
	Connected  bool      `json:"connected"`
	ServerTime time.Time `json:"serverTime"`
	Peers      int       `json:"peers"`
	Error      string    `json:"error,omitempty"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	res := healthResponse{Connected: true, ServerTime: now().UTC()}
	if h.Relay != nil {
		res.Peers = h.Relay.Peers()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		logger.L().Error("database ping failed", zap.Error(err))
		res.Connected = false
		res.Error = "Database connection failed"
		respond.JSON(w, http.StatusServiceUnavailable, res)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
