package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/pliu/chatsight/internal/apperrors"
	"github.com/pliu/chatsight/internal/middleware"
)

const maxBodyBytes = 1 << 20

// UserID is a user id in a request body. Browsers send it either as a JSON
// number or as a numeric string; null and "" decode to zero.
type UserID int64

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = UserID(n)
	return nil
}

// decode reads a JSON body into v. An empty body leaves v zero so that the
// handler reports the missing fields instead.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.ErrInvalidBody
}

func viewer(r *http.Request) int64 {
	id, ok := middleware.Identity(r.Context())
	if !ok {
		return 0
	}
	return id.ID
}
