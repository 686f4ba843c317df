package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	// HeaderUserID carries the caller identity set by the upstream proxy.
	HeaderUserID  = "X-User-ID"
	defaultUserID = "default"

	maxUserIDLen = 128
	maxJSONBody  = 1 << 20
)

// userID returns the caller identity, "default" when absent.
func userID(r *http.Request) string {
	id := sanitizeInput(r.Header.Get(HeaderUserID))
	if id == "" {
		return defaultUserID
	}
	if len(id) > maxUserIDLen {
		id = id[:maxUserIDLen]
	}
	return id
}

// decodeJSON reads one JSON object from a size-limited body. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("invalid JSON body: %v", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// queryInt returns def for a missing parameter and an error for a
// malformed one.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': must be an integer", key, v)
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s '%s': must be a number", key, v)
	}
	return f, nil
}

// sanitizeInput trims s and strips control characters other than
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
