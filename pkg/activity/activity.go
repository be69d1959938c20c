// Package activity reads a site's activity log: paginated activity history
// and per-category activity counts.
package activity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Activity is one logged event in a site's history.
type Activity struct {
	ID         string    `json:"activity_id"`
	Summary    string    `json:"summary"`
	Text       string    `json:"text,omitempty"`
	Name       string    `json:"name,omitempty"`
	Type       string    `json:"type,omitempty"`
	Gridicon   string    `json:"gridicon,omitempty"`
	Status     string    `json:"status,omitempty"`
	RewindID   string    `json:"rewind_id,omitempty"`
	Rewindable bool      `json:"is_rewindable"`
	Published  time.Time `json:"published"`
	Actor      *Actor    `json:"actor,omitempty"`

	// Group is the category key the activity is counted under, taken from
	// the part of Name before "__" (e.g. "post" for "post__published").
	// Empty when Name has no category prefix.
	Group string `json:"group,omitempty"`
}

// Actor is whoever or whatever performed an activity.
type Actor struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Role        string `json:"role,omitempty"`
	WPComUserID int64  `json:"wpcom_user_id,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Group is an activity category with the number of activities in it.
type Group struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Validate checks if the group is valid.
func (g Group) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Key, validation.Required),
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.Count, validation.Min(0)),
	)
}

// PaginationRequest selects one page of activity.
type PaginationRequest struct {
	// Offset is the number of activities to skip.
	Offset int

	// Count is the page size.
	Count int

	// After and Before bound the activity by day. Supplying only one of them
	// (without Groups) selects the activity of that single day.
	After  *time.Time
	Before *time.Time

	// Groups restricts the activity to these category keys.
	Groups []string
}

// Paged reports whether Offset selects a page. A single day bound without
// Groups always requests the first page, so the offset has no effect.
func (r PaginationRequest) Paged() bool {
	singleDay := (r.After == nil) != (r.Before == nil)
	return !singleDay || len(r.Groups) > 0
}

// Validate checks if the request is valid.
func (r PaginationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Count, validation.Required, validation.Min(1)),
		validation.Field(&r.Groups, validation.Each(validation.Required)),
	)
}

// PaginationResult is one page of activity.
type PaginationResult struct {
	Activities []Activity `json:"activities"`

	// HasMore is true when the page is full, meaning more activity may
	// follow. A short page is the last page.
	HasMore bool `json:"has_more"`

	// TotalItems is the total reported by the server, or -1 when it did not
	// report one. It does not affect HasMore.
	TotalItems int `json:"total_items"`
}
