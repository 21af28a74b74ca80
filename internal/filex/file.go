// Package filex contains local-file helpers for the image pipeline:
// reference validation, bounded reads, and content-type detection.
package filex

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps how much of a picked file is read into memory.
const MaxImageBytes = 25 << 20 // 25 MiB

// LocalPath resolves a picker reference to a local filesystem path.
// Accepted forms are a bare path and a file:// URI. Anything carrying a
// remote scheme (http, https, content, ...) is rejected: uploads must
// start from a local file.
func LocalPath(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty file reference")
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse reference: %w", err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("not a local file reference: scheme %q", u.Scheme)
		}
		if u.Path == "" {
			return "", fmt.Errorf("file reference has no path")
		}
		return u.Path, nil
	}

	return ref, nil
}

// ReadLocal reads the file behind a local reference into memory,
// refusing files larger than MaxImageBytes.
func ReadLocal(ref string) ([]byte, error) {
	path, err := LocalPath(ref)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxImageBytes {
		return nil, fmt.Errorf("%s exceeds the %d byte limit", path, MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Ext returns the lower-cased extension of the file behind ref,
// including the leading dot. Defaults to ".jpg" when there is none.
func Ext(ref string) string {
	path, err := LocalPath(ref)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ".jpg"
	}
	return ext
}

// ContentType maps an image file extension to its MIME type.
// Unknown extensions fall back to image/jpeg, matching the upload default.
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
