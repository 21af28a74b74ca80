package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitly/fitly/internal/backend/storage"
	"github.com/fitly/fitly/internal/client/media"
	"github.com/fitly/fitly/internal/common"
	"github.com/fitly/fitly/internal/logging"
)

type fakeLibrary struct {
	permErr error
	asset   *media.Asset
	pickErr error
	picks   int
}

func (f *fakeLibrary) RequestPermission() error { return f.permErr }
func (f *fakeLibrary) Pick(ctx context.Context, opts media.PickerOptions) (*media.Asset, error) {
	f.picks++
	if f.pickErr != nil {
		return nil, f.pickErr
	}
	return f.asset, nil
}

type fakeStorage struct {
	uploads   int
	gotBucket string
	gotKey    string
	gotOpts   storage.UploadOptions
	gotBytes  []byte
	err       error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, key string, payload []byte, opts storage.UploadOptions) error {
	f.uploads++
	f.gotBucket, f.gotKey, f.gotOpts, f.gotBytes = bucket, key, opts, payload
	return f.err
}

func (f *fakeStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://cdn.example/%s/%s", bucket, key)
}

func newUploader(lib media.Library, st storage.Storage) *Uploader {
	u := New(lib, st, "clothing-images", logging.NewDefault("error"))
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }
	u.randID = func() string { return "ab12cd" }
	return u
}

func TestAcquire_PermissionDenied(t *testing.T) {
	lib := &fakeLibrary{permErr: common.NewError(common.KindPermission, "denied", nil)}
	u := newUploader(lib, &fakeStorage{})

	_, err := u.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindPermission))
	assert.Equal(t, 0, lib.picks, "denied permission must not open the picker")
}

func TestAcquire_Canceled(t *testing.T) {
	lib := &fakeLibrary{pickErr: common.ErrNoSelection}
	u := newUploader(lib, &fakeStorage{})

	_, err := u.Acquire(context.Background())
	assert.ErrorIs(t, err, common.ErrNoSelection)
}

func TestAcquire_FreshSessionPerCall(t *testing.T) {
	lib := &fakeLibrary{asset: &media.Asset{URI: "file:///tmp/a.jpg"}}
	u := newUploader(lib, &fakeStorage{})

	_, _ = u.Acquire(context.Background())
	_, _ = u.Acquire(context.Background())
	assert.Equal(t, 2, lib.picks)
}

func TestUpload_RejectsRemoteRefWithoutNetworkCall(t *testing.T) {
	st := &fakeStorage{}
	u := newUploader(&fakeLibrary{}, st)

	for _, ref := range []string{"https://evil.example/a.jpg", "content://media/1", ""} {
		_, err := u.Upload(context.Background(), ref, "u1")
		require.Error(t, err, "ref %q", ref)
		assert.True(t, common.IsKind(err, common.KindValidation), "ref %q", ref)
	}
	assert.Equal(t, 0, st.uploads)
}

func TestUpload_KeyShapeAndResultURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.PNG")
	require.NoError(t, os.WriteFile(path, []byte("png-data"), 0o600))

	st := &fakeStorage{}
	u := newUploader(&fakeLibrary{}, st)

	url, err := u.Upload(context.Background(), "file://"+path, "u1")
	require.NoError(t, err)

	assert.Equal(t, "clothing-images", st.gotBucket)
	assert.Equal(t, "u1/1700000000000-ab12cd.png", st.gotKey)
	assert.Equal(t, "image/png", st.gotOpts.ContentType)
	assert.False(t, st.gotOpts.Upsert)
	assert.Equal(t, []byte("png-data"), st.gotBytes)
	assert.Equal(t, "https://cdn.example/clothing-images/u1/1700000000000-ab12cd.png", url)
}

func TestUpload_KeyIsProbabilisticallyUnique(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	st := &fakeStorage{}
	u := New(&fakeLibrary{}, st, "b", logging.NewDefault("error"))

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		_, err := u.Upload(context.Background(), path, "u1")
		require.NoError(t, err)
		assert.False(t, seen[st.gotKey], "key %q repeated", st.gotKey)
		seen[st.gotKey] = true
		assert.Regexp(t, regexp.MustCompile(`^u1/\d+-[0-9a-f]+\.jpg$`), st.gotKey)
	}
}

func TestUpload_StorageFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	st := &fakeStorage{err: common.NewError(common.KindBackend, "bucket missing", nil)}
	u := newUploader(&fakeLibrary{}, st)

	url, err := u.Upload(context.Background(), path, "u1")
	require.Error(t, err)
	assert.Empty(t, url)
	assert.True(t, common.IsKind(err, common.KindBackend))
	assert.Equal(t, 1, st.uploads, "exactly one attempt, no retry")
}
