package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

type activityPayload struct {
	ActivityID   *value.ID
	Summary      *string
	Content      *struct{ Text *string }
	Name         *string
	Type         *string
	Gridicon     *string
	Status       *string
	RewindID     *value.ID
	IsRewindable *bool
	Published    *time.Time
	Actor        *actorPayload
}

type actorPayload struct {
	Name        *string
	Type        *string
	Role        *string
	WPComUserID *int64 `mapstructure:"wpcom_user_id"`
	Icon        *struct{ URL *string }
}

type groupPayload struct {
	Name  *string
	Count *int
}

// decodePage decodes {"totalItems": n, "current": {"orderedItems": [...]}}.
// Every item is checked and all problems are reported together.
func decodePage(v value.Value, count int) (*PaginationResult, error) {
	itemsValue, ok := v.Lookup("current", "orderedItems")
	if !ok {
		return nil, apierror.DecodingFailuref("activity page is missing current.orderedItems")
	}
	items, ok := itemsValue.AsSequence()
	if !ok {
		return nil, apierror.DecodingFailuref("current.orderedItems is %s, expected sequence", itemsValue.Kind())
	}

	total := -1
	if t, ok := v.Get("totalItems"); ok && !t.IsNull() {
		n, ok := t.AsInt()
		if !ok || n < 0 {
			return nil, apierror.DecodingFailuref("totalItems is not a non-negative integer")
		}
		total = int(n)
	}

	var result *multierror.Error
	activities := make([]Activity, 0, len(items))
	for i, item := range items {
		a, err := decodeActivity(item)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		activities = append(activities, a)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, apierror.DecodingFailure(err)
	}

	return &PaginationResult{
		Activities: activities,
		HasMore:    len(activities) == count,
		TotalItems: total,
	}, nil
}

func decodeActivity(v value.Value) (Activity, error) {
	if v.Kind() != value.KindMapping {
		return Activity{}, fmt.Errorf("activity is %s, expected mapping", v.Kind())
	}

	var p activityPayload
	if err := value.Decode(v, &p); err != nil {
		return Activity{}, err
	}

	var result *multierror.Error
	if p.ActivityID == nil || *p.ActivityID == "" {
		result = multierror.Append(result, fmt.Errorf("activity_id is required"))
	}
	if p.Summary == nil {
		result = multierror.Append(result, fmt.Errorf("summary is required"))
	}
	if p.Published == nil {
		result = multierror.Append(result, fmt.Errorf("published is required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return Activity{}, err
	}

	a := Activity{
		ID:         string(*p.ActivityID),
		Summary:    *p.Summary,
		Name:       deref(p.Name),
		Type:       deref(p.Type),
		Gridicon:   deref(p.Gridicon),
		Status:     deref(p.Status),
		RewindID:   derefID(p.RewindID),
		Rewindable: p.IsRewindable != nil && *p.IsRewindable,
		Published:  p.Published.UTC(),
	}
	if p.Content != nil {
		a.Text = deref(p.Content.Text)
	}
	if group, _, found := strings.Cut(a.Name, "__"); found {
		a.Group = group
	}
	if p.Actor != nil {
		a.Actor = &Actor{
			Name: deref(p.Actor.Name),
			Type: deref(p.Actor.Type),
			Role: deref(p.Actor.Role),
		}
		if p.Actor.WPComUserID != nil {
			a.Actor.WPComUserID = *p.Actor.WPComUserID
		}
		if p.Actor.Icon != nil {
			a.Actor.AvatarURL = deref(p.Actor.Icon.URL)
		}
	}

	return a, nil
}

// decodeGroups decodes {"groups": {key: {"name": ..., "count": n}}}. An empty
// JSON array in place of the mapping means no groups.
func decodeGroups(v value.Value) ([]Group, error) {
	groupsValue, ok := v.Get("groups")
	if !ok {
		return nil, apierror.DecodingFailuref("response is missing groups")
	}
	if seq, ok := groupsValue.AsSequence(); ok && len(seq) == 0 {
		return []Group{}, nil
	}
	if groupsValue.Kind() != value.KindMapping {
		return nil, apierror.DecodingFailuref("groups is %s, expected mapping", groupsValue.Kind())
	}

	var result *multierror.Error
	groups := make([]Group, 0, groupsValue.Len())
	for _, key := range groupsValue.Keys() {
		entry, _ := groupsValue.Get(key)
		g, err := decodeGroup(key, entry)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("group %q: %w", key, err))
			continue
		}
		groups = append(groups, g)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, apierror.DecodingFailure(err)
	}

	return groups, nil
}

func decodeGroup(key string, v value.Value) (Group, error) {
	if v.Kind() != value.KindMapping {
		return Group{}, fmt.Errorf("group is %s, expected mapping", v.Kind())
	}

	var p groupPayload
	if err := value.Decode(v, &p); err != nil {
		return Group{}, err
	}
	if p.Name == nil {
		return Group{}, fmt.Errorf("name is required")
	}
	if p.Count == nil {
		return Group{}, fmt.Errorf("count is required")
	}

	g := Group{Key: key, Name: *p.Name, Count: *p.Count}
	if err := g.Validate(); err != nil {
		return Group{}, err
	}
	return g, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *value.ID) string {
	if id == nil {
		return ""
	}
	return string(*id)
}
