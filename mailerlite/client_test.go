package mailerlite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_SubscribeSendsPayload(t *testing.T) {
	require := require.New(t)

	var (
		got       Subscriber
		gotReq    *http.Request
		decodeErr error
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		body, _ := io.ReadAll(r.Body)
		decodeErr = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"42"}}`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL+"/"))
	data, err := c.Subscribe(context.Background(), Subscriber{
		Email:  "a@example.com",
		Status: "active",
		Groups: []string{"g1"},
		Fields: map[string]string{"book_id": "whip", "source": "Whip the Dogs Launch"},
	})
	require.NoError(err)
	require.NoError(decodeErr)
	require.Equal(http.MethodPost, gotReq.Method)
	require.Equal("/api/subscribers", gotReq.URL.Path)
	require.Equal("Bearer secret", gotReq.Header.Get("Authorization"))
	require.Equal("application/json", gotReq.Header.Get("Content-Type"))
	require.JSONEq(`{"data":{"id":"42"}}`, string(data))
	require.Equal("a@example.com", got.Email)
	require.Equal([]string{"g1"}, got.Groups)
	require.Equal("whip", got.Fields["book_id"])
}

func TestClient_SubscribeReturnsAPIError(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`already there`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Subscribe(context.Background(), Subscriber{Email: "a@example.com"})
	var apiErr *APIError
	require.True(errors.As(err, &apiErr))
	require.True(apiErr.AlreadySubscribed())
	require.Equal("already there", apiErr.Body)
}

func TestClient_Configured(t *testing.T) {
	require.False(t, NewClient("  ").Configured())
	require.True(t, NewClient("k").Configured())
	var nilClient *Client
	require.False(t, nilClient.Configured())
}
