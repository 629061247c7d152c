package main

import (
	"encoding/json"
	"testing"

	"github.com/skybasehq/skybase-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuery(t *testing.T) *skybase.Query {
	t.Helper()
	client, err := skybase.New(&skybase.Config{ProjectKey: "proj_secret"})
	require.NoError(t, err)
	return client.Base("books").Query()
}

func queryGroups(t *testing.T, q *skybase.Query) []map[string]any {
	t.Helper()
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	var wire struct {
		Query []map[string]any `json:"query"`
	}
	require.NoError(t, json.Unmarshal(raw, &wire))
	return wire.Query
}

func TestApplyFilter(t *testing.T) {
	t.Run("equality and comparator filters", func(t *testing.T) {
		q := testQuery(t)
		require.NoError(t, applyFilter(q, "author=brandon"))
		require.NoError(t, applyFilter(q, "pages?gt=300"))
		require.NoError(t, applyFilter(q, `tags?contains="epic"`))

		groups := queryGroups(t, q)
		require.Len(t, groups, 1)
		assert.Equal(t, "brandon", groups[0]["author"])
		assert.Equal(t, float64(300), groups[0]["pages?gt"])
		assert.Equal(t, "epic", groups[0]["tags?contains"])
	})

	t.Run("non-JSON values fall back to strings", func(t *testing.T) {
		q := testQuery(t)
		require.NoError(t, applyFilter(q, "status=in progress"))
		groups := queryGroups(t, q)
		assert.Equal(t, "in progress", groups[0]["status"])
	})

	t.Run("missing value is rejected", func(t *testing.T) {
		assert.Error(t, applyFilter(testQuery(t), "author"))
	})
}
