package skybase

import (
	"context"
	"net/url"
)

// Update accumulates partial-update operations for one record. Methods
// chain; nothing is sent until Commit.
type Update struct {
	base *Base
	key  string

	sets       map[string]any
	deletes    []string
	appends    map[string]any
	prepends   map[string]any
	increments map[string]any
}

// Set overwrites a field with the given value.
func (u *Update) Set(field string, value any) *Update {
	if u.sets == nil {
		u.sets = make(map[string]any)
	}
	u.sets[field] = value
	return u
}

// Delete removes the given fields from the record.
func (u *Update) Delete(fields ...string) *Update {
	u.deletes = append(u.deletes, fields...)
	return u
}

// Append appends the value to an array field.
func (u *Update) Append(field string, value any) *Update {
	if u.appends == nil {
		u.appends = make(map[string]any)
	}
	u.appends[field] = value
	return u
}

// Prepend prepends the value to an array field.
func (u *Update) Prepend(field string, value any) *Update {
	if u.prepends == nil {
		u.prepends = make(map[string]any)
	}
	u.prepends[field] = value
	return u
}

// Increment adds the value to a numeric field. Negative values decrement.
func (u *Update) Increment(field string, value any) *Update {
	if u.increments == nil {
		u.increments = make(map[string]any)
	}
	u.increments[field] = value
	return u
}

// payload includes only the operation groups that have entries.
func (u *Update) payload() map[string]any {
	data := make(map[string]any, 5)
	if len(u.sets) > 0 {
		data["set"] = u.sets
	}
	if len(u.deletes) > 0 {
		data["delete"] = u.deletes
	}
	if len(u.appends) > 0 {
		data["append"] = u.appends
	}
	if len(u.prepends) > 0 {
		data["prepend"] = u.prepends
	}
	if len(u.increments) > 0 {
		data["increment"] = u.increments
	}
	return data
}

// Commit applies the accumulated operations to the record.
func (u *Update) Commit(ctx context.Context) error {
	if u.key == "" {
		return ErrEmptyKey
	}

	resp, err := u.base.client.R().
		SetContext(ctx).
		SetBody(u.payload()).
		Patch(u.base.prefix + "/items/" + url.PathEscape(u.key))

	return handleAPIError(resp, err, "base update")
}
