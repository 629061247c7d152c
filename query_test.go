package skybase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(&Config{
		ProjectKey:    "proj_secret",
		BaseEndpoint:  url,
		DriveEndpoint: url,
	})
	require.NoError(t, err)
	return c
}

type queryWire struct {
	Limit *int             `json:"limit"`
	Last  *string          `json:"last"`
	Sort  *string          `json:"sort"`
	Query []map[string]any `json:"query"`
}

func marshalQuery(t *testing.T, q *Query) queryWire {
	t.Helper()
	raw, err := q.MarshalJSON()
	require.NoError(t, err)
	var wire queryWire
	require.NoError(t, json.Unmarshal(raw, &wire))
	return wire
}

func TestQuery_Serialize(t *testing.T) {
	base := testClient(t, "http://127.0.0.1:0").Base("books")

	t.Run("equals uses the bare field name", func(t *testing.T) {
		wire := marshalQuery(t, base.Query().Equals("author", "brandon"))
		require.Len(t, wire.Query, 1)
		assert.Equal(t, map[string]any{"author": "brandon"}, wire.Query[0])
	})

	t.Run("non-equality comparators encode as field?op", func(t *testing.T) {
		q := base.Query().
			NotEquals("a", 1).
			GreaterThan("b", 2).
			GreaterThanOrEqual("c", 3).
			LessThan("d", 4).
			LessThanOrEqual("e", 5).
			InRange("f", 10, 20).
			Contains("g", "x").
			NotContains("h", "y").
			Prefix("i", "z")

		wire := marshalQuery(t, q)
		require.Len(t, wire.Query, 1)
		group := wire.Query[0]

		for _, key := range []string{"a?ne", "b?gt", "c?gte", "d?lt", "e?lte", "f?range", "g?contains", "h?not_contains", "i?pfx"} {
			assert.Contains(t, group, key)
		}
		assert.Equal(t, []any{float64(10), float64(20)}, group["f?range"])
	})

	t.Run("last write wins on a duplicate field+comparator", func(t *testing.T) {
		q := base.Query().
			Equals("status", "draft").
			GreaterThan("pages", 100).
			Equals("status", "published")

		wire := marshalQuery(t, q)
		require.Len(t, wire.Query, 1)
		assert.Len(t, wire.Query[0], 2)
		assert.Equal(t, "published", wire.Query[0]["status"])
	})

	t.Run("insertion order of distinct keys is preserved", func(t *testing.T) {
		q := base.Query().
			Equals("zebra", 1).
			Equals("apple", 2).
			Equals("mango", 3).
			Equals("zebra", 9)

		raw, err := q.group.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"zebra":9,"apple":2,"mango":3}`, string(raw))
	})

	t.Run("limit last and sort presence rules", func(t *testing.T) {
		wire := marshalQuery(t, base.Query())
		assert.Nil(t, wire.Limit)
		assert.Nil(t, wire.Last)
		assert.Nil(t, wire.Sort)

		wire = marshalQuery(t, base.Query().Limit(50).Last("cursor-1").Sort(true))
		require.NotNil(t, wire.Limit)
		assert.Equal(t, 50, *wire.Limit)
		require.NotNil(t, wire.Last)
		assert.Equal(t, "cursor-1", *wire.Last)
		require.NotNil(t, wire.Sort)
		assert.Equal(t, "desc", *wire.Sort)

		// sort false stays off the wire
		wire = marshalQuery(t, base.Query().Sort(false))
		assert.Nil(t, wire.Sort)
	})

	t.Run("wire form is an array even for a single empty group", func(t *testing.T) {
		wire := marshalQuery(t, base.Query())
		require.Len(t, wire.Query, 1)
		assert.Empty(t, wire.Query[0])
	})
}

func TestQuery_Union(t *testing.T) {
	base := testClient(t, "http://127.0.0.1:0").Base("books")

	a := base.Query().Equals("genre", "fantasy")
	b := base.Query().Equals("genre", "scifi")
	c := base.Query().GreaterThan("year", 2000)
	b.Union(c)

	wire := marshalQuery(t, a.Union(b))

	// b contributed c's group and its own, then a's current group trails
	require.Len(t, wire.Query, 3)
	assert.Equal(t, map[string]any{"year?gt": float64(2000)}, wire.Query[0])
	assert.Equal(t, map[string]any{"genre": "scifi"}, wire.Query[1])
	assert.Equal(t, map[string]any{"genre": "fantasy"}, wire.Query[2])

	t.Run("union does not affect the current group", func(t *testing.T) {
		a.Equals("lang", "en")
		wire := marshalQuery(t, a)
		require.Len(t, wire.Query, 3)
		assert.Equal(t, map[string]any{"genre": "fantasy", "lang": "en"}, wire.Query[2])
	})
}

func TestQuery_Append(t *testing.T) {
	base := testClient(t, "http://127.0.0.1:0").Base("books")

	q := base.Query().Equals("a", 1).Append(map[string]any{"b?gt": 2})
	wire := marshalQuery(t, q)
	require.Len(t, wire.Query, 2)
	assert.Equal(t, map[string]any{"b?gt": float64(2)}, wire.Query[0])
	assert.Equal(t, map[string]any{"a": float64(1)}, wire.Query[1])
}

func TestQuery_Run(t *testing.T) {
	var gotPath, gotKey string
	var gotBody queryWire

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get(HeaderAPIKey)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"paging":{"size":1,"last":""},"items":[{"key":"k1"}]}`))
	}))
	defer srv.Close()

	base := testClient(t, srv.URL).Base("books")
	resp, err := base.Query().Equals("author", "brandon").Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/proj/books/query", gotPath)
	assert.Equal(t, "proj_secret", gotKey)
	require.Len(t, gotBody.Query, 1)
	assert.Equal(t, map[string]any{"author": "brandon"}, gotBody.Query[0])

	assert.Equal(t, 1, resp.Paging.Size)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "k1", resp.Items[0]["key"])
}

func TestQuery_All(t *testing.T) {
	t.Run("aggregates every page and issues one call per page", func(t *testing.T) {
		pages := []string{
			`{"paging":{"size":2,"last":"c1"},"items":[{"n":1},{"n":2}]}`,
			`{"paging":{"size":3,"last":"c2"},"items":[{"n":3},{"n":4},{"n":5}]}`,
			`{"paging":{"size":1,"last":""},"items":[{"n":6}]}`,
		}
		var calls atomic.Int32
		var lasts []string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Last string `json:"last"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			lasts = append(lasts, body.Last)

			n := calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(pages[n-1]))
		}))
		defer srv.Close()

		q := testClient(t, srv.URL).Base("books").Query()
		resp, err := q.All(context.Background())
		require.NoError(t, err)

		assert.EqualValues(t, 3, calls.Load())
		assert.Equal(t, []string{"", "c1", "c2"}, lasts)
		assert.Len(t, resp.Items, 6)
		assert.Equal(t, 6, resp.Paging.Size)
		assert.Empty(t, resp.Paging.Last)

		// the builder itself was never mutated by the walk
		assert.Empty(t, q.last)
	})

	t.Run("fails before any network call when limit is set", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Base("books").Query().Limit(10).All(context.Background())
		assert.ErrorIs(t, err, ErrLimitSet)
		assert.Zero(t, calls.Load())
	})

	t.Run("a mid-walk error fails the whole walk by default", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"paging":{"size":1,"last":"c1"},"items":[{"n":1}]}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Base("books").Query().All(context.Background())
		require.Error(t, err)
		var httpErr *HTTPError
		assert.ErrorAs(t, err, &httpErr)
	})

	t.Run("AllowPartial returns pages aggregated before a mid-walk error", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"paging":{"size":2,"last":"c1"},"items":[{"n":1},{"n":2}]}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		resp, err := testClient(t, srv.URL).Base("books").Query().AllowPartial().All(context.Background())
		require.NoError(t, err)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, 2, resp.Paging.Size)
	})

	t.Run("AllowPartial still propagates a first-page error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := testClient(t, srv.URL).Base("books").Query().AllowPartial().All(context.Background())
		assert.ErrorIs(t, err, ErrBadRequest)
	})
}
