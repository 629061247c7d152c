package skybase

import (
	"time"
)

// Record is one document destined for a Base.
type Record struct {
	// Key of the record. Empty lets the service generate a random key.
	Key string

	// Value holds the record fields. Must be JSON-compatible.
	Value map[string]any

	// ExpiresIn expires the record this many seconds from now.
	// Takes precedence over ExpiresAt.
	ExpiresIn int64

	// ExpiresAt expires the record at the given time.
	ExpiresAt time.Time
}

// payload flattens the record into its wire form: the value fields plus
// the key and a __expires unix timestamp when set.
func (r Record) payload() map[string]any {
	data := make(map[string]any, len(r.Value)+2)
	for k, v := range r.Value {
		data[k] = v
	}
	if r.Key != "" {
		data["key"] = r.Key
	}
	if r.ExpiresIn > 0 {
		data["__expires"] = time.Now().Unix() + r.ExpiresIn
	} else if !r.ExpiresAt.IsZero() {
		data["__expires"] = r.ExpiresAt.Unix()
	}
	return data
}

// ===================================================================================================

// PutItems is the batch of records processed by a bulk upsert.
type PutItems struct {
	Items []map[string]any `json:"items"`
}

// PutResponse represents the response from a bulk upsert.
type PutResponse struct {
	Processed PutItems `json:"processed"`
	Failed    PutItems `json:"failed"`
}

// ===================================================================================================

// Paging is the cursor block of a paged response. An empty Last means
// there are no more pages.
type Paging struct {
	Size int    `json:"size"`
	Last string `json:"last,omitempty"`
}

// QueryResponse is one page of query results, or the aggregate of all
// pages when returned by Query.All.
type QueryResponse struct {
	Paging Paging           `json:"paging"`
	Items  []map[string]any `json:"items"`
}
