package skybase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/imroc/req/v3"
)

// maxPutBatch is the server-side cap on records per bulk upsert,
// enforced locally before any request is made.
const maxPutBatch = 25

// Base is a handle on one named document store.
type Base struct {
	Name   string
	client *req.Client
	prefix string
}

// Get fetches the record with the given key.
func (b *Base) Get(ctx context.Context, key string) (map[string]any, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	var item map[string]any
	resp, err := b.client.R().
		SetContext(ctx).
		SetSuccessResult(&item).
		Get(b.prefix + "/items/" + url.PathEscape(key))

	if err := handleAPIError(resp, err, "base get"); err != nil {
		return nil, err
	}

	return item, nil
}

// Put upserts up to 25 records in one call. Records with existing keys
// are overwritten.
func (b *Base) Put(ctx context.Context, records ...Record) (*PutResponse, error) {
	if len(records) > maxPutBatch {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyItems, len(records))
	}

	items := make([]map[string]any, 0, len(records))
	for _, r := range records {
		items = append(items, r.payload())
	}

	var out *PutResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": items}).
		SetSuccessResult(&out).
		Put(b.prefix + "/items")

	if err := handleAPIError(resp, err, "base put"); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("base put: %w", ErrInvalidResponse)
	}

	return out, nil
}

// Insert stores a single record, failing with ErrConflict if the key
// already exists.
func (b *Base) Insert(ctx context.Context, record Record) (map[string]any, error) {
	var item map[string]any
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"item": record.payload()}).
		SetSuccessResult(&item).
		Post(b.prefix + "/items")

	if err := handleAPIError(resp, err, "base insert"); err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes the record with the given key. Deleting a missing key
// is not an error.
func (b *Base) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	resp, err := b.client.R().
		SetContext(ctx).
		Delete(b.prefix + "/items/" + url.PathEscape(key))

	return handleAPIError(resp, err, "base delete")
}

// Update starts a partial update of the record with the given key.
// Call Commit on the returned Update to apply it.
func (b *Base) Update(key string) *Update {
	return &Update{base: b, key: key}
}

// Query starts a new query against this base.
func (b *Base) Query() *Query {
	return &Query{base: b, group: newGroup()}
}
