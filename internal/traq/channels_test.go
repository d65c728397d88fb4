package traq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelListJSON = `{
  "public": [
    {"id": "a", "parentId": null, "archived": false, "force": false, "topic": "", "name": "general", "children": ["b"]},
    {"id": "b", "parentId": "a", "archived": true, "force": true, "topic": "old", "name": "random", "children": []}
  ],
  "dm": [{"id": "dm-1", "userId": "u"}]
}`

func TestChannels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/channels", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("include-dm"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(channelListJSON))
	}))
	defer srv.Close()

	channels, err := newTestClient(t, srv.URL).Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)

	assert.Equal(t, "general", channels[0].Name)
	assert.Nil(t, channels[0].ParentID)
	assert.Equal(t, []string{"b"}, channels[0].Children)

	require.NotNil(t, channels[1].ParentID)
	assert.Equal(t, "a", *channels[1].ParentID)
	assert.True(t, channels[1].Archived)
	assert.True(t, channels[1].Force)
	assert.Equal(t, "old", channels[1].Topic)
}

func TestChannels_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"public": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Channels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding channel list")
}

func TestChannels_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Channels(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetSubscriptionLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/me/subscriptions/chan-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var body map[string]int
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, map[string]int{"level": 2}, body)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SetSubscriptionLevel(context.Background(), "chan-1", 2)
	require.NoError(t, err)
}

func TestSetSubscriptionLevel_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"forced channel"}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SetSubscriptionLevel(context.Background(), "chan-1", 0)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "forced channel")
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"u-1","name":"alice","displayName":"Alice","bot":false}`))
	}))
	defer srv.Close()

	user, err := newTestClient(t, srv.URL).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "u-1", Name: "alice", DisplayName: "Alice"}, user)
}
