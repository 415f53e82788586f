package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

// ResultQuery parses the query string of a result listing:
// ?limit=N&player=ID
func ResultQuery(r *http.Request) (storage.ResultQuery, error) {
	var q storage.ResultQuery

	values := r.URL.Query()
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, fmt.Errorf("limit must be a positive integer, got %q", raw)
		}
		q.Limit = limit
	}
	if raw := values.Get("player"); raw != "" {
		if !model.ValidPlayerID(model.PlayerID(raw)) {
			return q, fmt.Errorf("invalid player %q", raw)
		}
		q.Player = model.PlayerID(raw)
	}
	return q.Normalize(), nil
}
