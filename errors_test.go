package skybase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError_Taxonomy(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusRequestEntityTooLarge, ErrPayloadTooLarge},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, statusError(tc.status, ""), tc.want)
		assert.ErrorIs(t, statusError(tc.status, "details"), tc.want)
		assert.Contains(t, statusError(tc.status, "details").Error(), "details")
	}

	var httpErr *HTTPError
	err := statusError(http.StatusTeapot, "short and stout")
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTeapot, httpErr.Status)
	assert.Equal(t, "short and stout", httpErr.Message)
}

func TestHandleAPIError_ServiceBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":["bad key","expired"]}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Base("books").Get(context.Background(), "k1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "bad key; expired")
}

func TestHandleAPIError_Transport(t *testing.T) {
	// nothing listens here
	base := testClient(t, "http://127.0.0.1:1").Base("books")
	_, err := base.Get(context.Background(), "k1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "base get")
}
