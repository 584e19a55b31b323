package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresTokens(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req["username"])
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "at1",
			"refresh_token": "rt1",
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	require.False(t, c.LoggedIn())
	require.NoError(t, c.Login(context.Background(), "alice", "pw"))
	assert.True(t, c.LoggedIn())
	assert.Equal(t, "at1", c.accessToken)
	assert.Equal(t, "rt1", c.refreshToken)
}

func TestUpload_SendsBearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer at1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"fingerprint": "fp1"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.accessToken = "at1"

	fp, err := c.Upload(context.Background(), "a.txt", "hello")
	require.NoError(t, err)
	assert.Equal(t, "fp1", fp)
}

func TestCall_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, common.ErrorUnauthorized},
		{"not found", http.StatusNotFound, common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			c := New(ts.URL)
			err := c.RecordAccess(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReuseCheck_DecodesMatches(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"document": "a.txt", "fingerprint": "fp1", "similarity": 100.0},
				{"document": "b.txt", "fingerprint": "fp2", "similarity": 41.5},
			},
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.accessToken = "at1"

	matches, err := c.ReuseCheck(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a.txt", matches[0].Document)
	assert.Equal(t, 41.5, matches[1].Similarity)
}

func TestArchive_PresignsThenUploads(t *testing.T) {
	var uploaded []byte

	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("POST /archive/presign", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"key": "archive/k1",
			"url": ts.URL + "/blob/k1",
		})
	})
	mux.HandleFunc("PUT /blob/k1", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		uploaded = body
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL)
	c.accessToken = "at1"

	key, err := c.Archive(context.Background(), []byte("sealed"))
	require.NoError(t, err)
	assert.Equal(t, "archive/k1", key)
	assert.Equal(t, []byte("sealed"), uploaded)
}
