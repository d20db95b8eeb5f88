package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
)

func stubServer(t *testing.T, status int, body string) (*apiclient.Client, *http.Request) {
	t.Helper()
	var seen http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	c, err := apiclient.New(apiclient.Config{BaseURL: ts.URL + "/", Logger: logger.Nop()})
	require.NoError(t, err)
	return c.WithToken("tok"), &seen
}

// ── Fetch ────────────────────────────────────────────────────────────────────

func TestFetch_ReturnsEnvelopeList(t *testing.T) {
	c, seen := stubServer(t, http.StatusOK, `{"resident_id":1,"records":[{"timestamp":"2024-03-10T08:00:00","result":"GRANTED"}]}`)

	list, res, err := c.Fetch(context.Background(), "/api/resident/1/access-history", apiclient.DateQuery("2024-03-01", ""), "records")
	require.NoError(t, err)
	assert.True(t, res.OK)
	require.Len(t, list, 1)
	assert.Equal(t, "GRANTED", list[0]["result"])

	assert.Equal(t, "/api/resident/1/access-history", seen.URL.Path)
	assert.Equal(t, "2024-03-01", seen.URL.Query().Get("start_date"))
	assert.False(t, seen.URL.Query().Has("end_date"))
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
}

func TestFetch_MissingOrNullKeyIsEmpty(t *testing.T) {
	for _, body := range []string{`{"alerts":null}`, `{"something_else":[1]}`, `{}`} {
		c, _ := stubServer(t, http.StatusOK, body)

		list, res, err := c.Fetch(context.Background(), "/x", nil, "alerts")
		require.NoError(t, err, body)
		assert.True(t, res.OK)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
}

func TestFetch_HTTPErrorCarriesServerMessage(t *testing.T) {
	c, _ := stubServer(t, http.StatusForbidden, `{"error":"not allowed for this account","code":"forbidden"}`)

	list, res, err := c.Fetch(context.Background(), "/x", nil, "records")
	assert.Nil(t, list)
	assert.False(t, res.OK)
	assert.Equal(t, "not allowed for this account", res.Message)

	var ae *apiclient.APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, "forbidden", ae.Code)
}

func TestFetch_NonJSONErrorFallsBackToStatusText(t *testing.T) {
	c, _ := stubServer(t, http.StatusBadGateway, `<html>oops</html>`)

	_, res, err := c.Fetch(context.Background(), "/x", nil, "records")
	require.Error(t, err)
	assert.Equal(t, "Bad Gateway", res.Message)
}

func TestFetch_DecodeFailure(t *testing.T) {
	c, _ := stubServer(t, http.StatusOK, `{"records":"nope"}`)

	_, res, err := c.Fetch(context.Background(), "/x", nil, "records")
	require.Error(t, err)
	assert.False(t, res.OK)
}

func TestFetch_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c, err := apiclient.New(apiclient.Config{BaseURL: ts.URL})
	require.NoError(t, err)

	_, res, err := c.Fetch(context.Background(), "/x", nil, "records")
	require.Error(t, err)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Message)
}

func TestIsUnauthorized(t *testing.T) {
	c, _ := stubServer(t, http.StatusUnauthorized, `{"error":"invalid or expired token"}`)

	_, err := c.CheckSession(context.Background())
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.False(t, apiclient.IsUnauthorized(errors.New("x")))
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := apiclient.New(apiclient.Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
