package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pliu/chatsight/internal/models"
)

// Result is the outcome of an API call. Status is 0 when the server could
// not be reached.
type Result struct {
	OK     bool
	Status int
	Error  string
}

func (r Result) Unauthorized() bool {
	return r.Status == http.StatusUnauthorized
}

// API issues JSON requests against the /api routes. Any 401 ends the session.
type API struct {
	baseURL string
	http    *http.Client
	session *Session
}

func NewAPI(baseURL string, httpClient *http.Client, session *Session) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/") + "/api", http: httpClient, session: session}
}

func (a *API) do(ctx context.Context, method, path string, body, out any) Result {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Result{Error: err.Error()}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return Result{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := a.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return Result{Error: "Network error: " + err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	res := Result{OK: resp.StatusCode >= 200 && resp.StatusCode < 300, Status: resp.StatusCode}
	if !res.OK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		res.Error = e.Error
		if res.Error == "" {
			res.Error = "Request failed"
		}
		if res.Unauthorized() {
			a.session.End()
		}
		return res
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			res.OK = false
			res.Error = "Invalid response: " + err.Error()
		}
	}
	return res
}

func (a *API) Register(ctx context.Context, name, email, password string) (models.PublicUser, Result) {
	var out struct {
		User models.PublicUser `json:"user"`
	}
	res := a.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out.User, res
}

// Login begins the session on success.
func (a *API) Login(ctx context.Context, email, password string) (models.PublicUser, Result) {
	var out struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	res := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if res.OK {
		if out.Token == "" {
			return models.PublicUser{}, Result{Status: res.Status, Error: "Invalid response: missing token"}
		}
		a.session.Begin(out.Token, out.User)
	}
	return out.User, res
}

// Logout ends the session whatever the server answers.
func (a *API) Logout(ctx context.Context) Result {
	res := a.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	a.session.End()
	return res
}

func (a *API) Users(ctx context.Context) ([]models.PublicUser, Result) {
	var out struct {
		Users []models.PublicUser `json:"users"`
	}
	res := a.do(ctx, http.MethodGet, "/users", nil, &out)
	return out.Users, res
}

func (a *API) History(ctx context.Context, withUserID int64) ([]models.Message, Result) {
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	res := a.do(ctx, http.MethodPost, "/messages/chathistory", map[string]int64{"withUserId": withUserID}, &out)
	return out.Messages, res
}

func (a *API) Send(ctx context.Context, receiverID int64, text string) (*models.Message, Result) {
	var out struct {
		Message *models.Message `json:"message"`
	}
	res := a.do(ctx, http.MethodPost, "/messages/sendmsg", map[string]any{
		"receiver_id": receiverID, "text": text,
	}, &out)
	if res.OK && out.Message == nil {
		return nil, Result{Status: res.Status, Error: "Invalid response: missing message"}
	}
	return out.Message, res
}

// Insight is the part of an insight response a client displays.
type Insight struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
	Cached    bool   `json:"cached"`
}

func (a *API) Insight(ctx context.Context, withUserID int64) (Insight, Result) {
	var out Insight
	res := a.do(ctx, http.MethodPost, "/insights/generate", map[string]int64{"withUserId": withUserID}, &out)
	return out, res
}

// ErrSignedOut is returned by Chat operations that need a session.
var ErrSignedOut = errors.New("client: not signed in")
