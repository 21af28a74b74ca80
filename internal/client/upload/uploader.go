// Package upload coordinates the two-step image pipeline: acquire a local
// file through the media library, then turn it into a durable remote
// object with a public retrieval URL.
//
// Both steps are best-effort single attempts. A failure of either returns
// an error the caller treats as advisory: items exist without photos.
package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitly/fitly/internal/backend/storage"
	"github.com/fitly/fitly/internal/client/media"
	"github.com/fitly/fitly/internal/common"
	"github.com/fitly/fitly/internal/filex"
	"github.com/fitly/fitly/internal/logging"
)

// Uploader binds the media library to an object-storage driver and a
// fixed bucket.
type Uploader struct {
	lib    media.Library
	store  storage.Storage
	bucket string
	log    logging.Logger

	// Seams for deterministic storage keys in tests.
	now    func() time.Time
	randID func() string
}

func New(lib media.Library, store storage.Storage, bucket string, log logging.Logger) *Uploader {
	return &Uploader{
		lib:    lib,
		store:  store,
		bucket: bucket,
		log:    log,
		now:    time.Now,
		randID: func() string { return strings.SplitN(uuid.NewString(), "-", 2)[0] },
	}
}

// Acquire runs one picker session and returns an opaque local file
// reference. Permission denial, cancellation, and an empty picker result
// all surface as errors; invoking Acquire again starts a fresh session.
func (u *Uploader) Acquire(ctx context.Context) (string, error) {
	if err := u.lib.RequestPermission(); err != nil {
		u.log.Warn(ctx, "media permission denied", "error", err)
		return "", err
	}

	asset, err := u.lib.Pick(ctx, media.PickerOptions{
		AllowsEditing: true,
		Aspect:        [2]int{4, 3},
		Quality:       0.8,
	})
	if err != nil {
		return "", err
	}
	return asset.URI, nil
}

// Upload reads the file behind fileRef and writes it to the bucket under a
// freshly synthesized key, returning the object's public URL.
//
// The key is <ownerID>/<unix-millis>-<random><ext>; uniqueness is
// probabilistic, and upsert stays disabled so a collision fails the upload
// instead of overwriting. One attempt, no retry, no partial state kept
// client-side on failure.
func (u *Uploader) Upload(ctx context.Context, fileRef, ownerID string) (string, error) {
	if _, err := filex.LocalPath(fileRef); err != nil {
		return "", common.NewError(common.KindValidation, "not a local file", err)
	}

	payload, err := filex.ReadLocal(fileRef)
	if err != nil {
		return "", common.NewError(common.KindValidation, "unreadable file", err)
	}

	ext := filex.Ext(fileRef)
	key := fmt.Sprintf("%s/%d-%s%s", ownerID, u.now().UnixMilli(), u.randID(), ext)

	opts := storage.UploadOptions{ContentType: filex.ContentType(ext), Upsert: false}
	if err := u.store.Upload(ctx, u.bucket, key, payload, opts); err != nil {
		u.log.Error(ctx, "image upload failed", "bucket", u.bucket, "key", key, "error", err)
		return "", err
	}

	url := u.store.PublicURL(u.bucket, key)
	u.log.Info(ctx, "image uploaded", "key", key, "url", url)
	return url, nil
}
