package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitly/fitly/internal/common"
)

func TestRESTUpload_RequestShape(t *testing.T) {
	var gotPath, gotCT, gotUpsert, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewREST(srv.URL, "anon", func() string { return "user-token" }, nil)

	err := s.Upload(context.Background(), "clothing-images", "u1/123-abc.jpg",
		[]byte{0xFF, 0xD8}, UploadOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/clothing-images/u1/123-abc.jpg", gotPath)
	assert.Equal(t, "image/jpeg", gotCT)
	assert.Equal(t, "false", gotUpsert, "upsert stays disabled")
	assert.Equal(t, "Bearer user-token", gotAuth)
	assert.Equal(t, []byte{0xFF, 0xD8}, gotBody)
}

func TestRESTUpload_KeyCollision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "The resource already exists"})
	}))
	defer srv.Close()

	s := NewREST(srv.URL, "anon", nil, nil)
	err := s.Upload(context.Background(), "clothing-images", "u1/dup.jpg", []byte("x"), UploadOptions{})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindBackend))
	assert.Contains(t, err.Error(), "already exists")
}

func TestRESTUpload_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	s := NewREST(base, "anon", nil, nil)
	err := s.Upload(context.Background(), "b", "k", []byte("x"), UploadOptions{})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindNetwork))
}

func TestRESTPublicURL(t *testing.T) {
	s := NewREST("https://api.example.co", "anon", nil, nil)
	assert.Equal(t,
		"https://api.example.co/storage/v1/object/public/clothing-images/u1/123-abc.jpg",
		s.PublicURL("clothing-images", "u1/123-abc.jpg"))
}
