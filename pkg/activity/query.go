package activity

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout of date filters sent to the server.
const DateFormat = "2006-01-02"

// BuildQuery builds the query parameters for a page of activity.
//
// Both bounds are sent as after/before. A single bound without groups is
// collapsed into an "on" filter for that day and always requests page 1. A
// single bound with groups is sent as "on" but keeps the computed page.
func BuildQuery(req PaginationRequest) url.Values {
	q := url.Values{}
	q.Set("number", strconv.Itoa(req.Count))

	page := 1
	if req.Paged() && req.Count > 0 {
		page = req.Offset/req.Count + 1
	}

	switch {
	case req.After != nil && req.Before != nil:
		q.Set("after", formatDate(*req.After))
		q.Set("before", formatDate(*req.Before))
	case req.After != nil || req.Before != nil:
		bound := req.After
		if bound == nil {
			bound = req.Before
		}
		q.Set("on", formatDate(*bound))
	}

	if len(req.Groups) > 0 {
		q.Set("group[]", strings.Join(req.Groups, ","))
	}
	q.Set("page", strconv.Itoa(page))

	return q
}

func formatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
