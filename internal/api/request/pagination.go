package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// Page bounds one page of trigger entries. Cursor is the id of the last
// entry on the previous page.
type Page struct {
	Limit  int
	Cursor string
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ParsePage reads limit and cursor from the query string. A bad limit falls
// back to DefaultLimit; a cursor that is not an entry id is rejected.
func ParsePage(r *http.Request) (Page, error) {
	p := Page{Limit: DefaultLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			p.Limit = min(limit, MaxLimit)
		}
	}

	if raw := r.URL.Query().Get("cursor"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Page{}, fmt.Errorf("invalid cursor %q", raw)
		}
		p.Cursor = id.String()
	}
	return p, nil
}
