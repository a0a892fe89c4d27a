package handlers

import (
	"net/http"

	"github.com/pliu/chatsight/internal/auth"
	"github.com/pliu/chatsight/internal/respond"
)

type AuthHandler struct {
	Auth *auth.Service
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "User registered",
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, res)
}

// Logout has nothing to revoke; the client drops its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": h.Auth.Logout(r.Header.Get("Authorization")),
	})
}
