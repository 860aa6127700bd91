package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordClient_Get(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/users/123", r.URL.Path)
		fmt.Fprint(w, `{"id":"123","username":"techie","global_name":"Tech Enthusiast","avatar":"abc123"}`)
	}))
	defer srv.Close()

	c := NewDiscordClient("test-token", srv.URL, 5*time.Second, slog.Default())

	p, err := c.Get(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "Bot test-token", gotAuth)
	assert.Equal(t, "Tech Enthusiast", p.Username)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/123/abc123.png", p.AvatarURL)
}

func TestDiscordClient_Get_Cached(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"id":"123","username":"techie"}`)
	}))
	defer srv.Close()

	c := NewDiscordClient("test-token", srv.URL, 5*time.Second, slog.Default())

	for i := 0; i < 3; i++ {
		p, err := c.Get(context.Background(), "123")
		require.NoError(t, err)
		assert.Equal(t, "techie", p.Username)
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestDiscordClient_Get_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewDiscordClient("test-token", srv.URL, 5*time.Second, slog.Default())

	_, err := c.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestNoop_Get(t *testing.T) {
	p, err := Noop{}.Get(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", p.UserID)
	assert.Empty(t, p.Username)
}
