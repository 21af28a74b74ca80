// Package media is the device-collaborator boundary: permission to the
// media library and the image picker. The terminal rendition browses a
// directory subtree and asks for a path; the boundary shapes (permission
// request, picker options, opaque asset URI) stay those of a device picker.
package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fitly/fitly/internal/common"
)

// Test seam for permission checks.
var osStat = os.Stat

// PickerOptions mirror the device picker call shape. Editing, aspect and
// quality are advisory here: the picked file is uploaded as-is.
type PickerOptions struct {
	AllowsEditing bool
	Aspect        [2]int
	Quality       float64
}

// Asset is the opaque local reference a successful pick produces. It is
// transient: owned by a single form screen and discarded after upload,
// cancellation, or navigating away.
type Asset struct {
	URI string
}

// Library is the media-library boundary.
type Library interface {
	// RequestPermission asks for access to the library. A denial is a
	// permission-kind error; the current action aborts, nothing retries.
	RequestPermission() error

	// Pick runs one picker session. Cancellation and an empty result both
	// surface as common.ErrNoSelection. Each call is a fresh session.
	Pick(ctx context.Context, opts PickerOptions) (*Asset, error)
}

// FSLibrary is a Library over a directory subtree, prompting on the
// terminal the same way the other screens do.
type FSLibrary struct {
	root   string
	reader *bufio.Reader
	out    io.Writer
}

// NewFSLibrary roots the library at dir; "" means the user's home
// directory.
func NewFSLibrary(dir string, reader *bufio.Reader, out io.Writer) *FSLibrary {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home
		} else {
			dir = "."
		}
	}
	return &FSLibrary{root: dir, reader: reader, out: out}
}

func (l *FSLibrary) RequestPermission() error {
	fi, err := osStat(l.root)
	if err != nil || !fi.IsDir() {
		return common.NewError(common.KindPermission, "media library is not accessible", err)
	}
	return nil
}

func (l *FSLibrary) Pick(ctx context.Context, opts PickerOptions) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(l.out, "Image path (relative to %s; empty line to cancel)\n> ", l.root)
	line, err := l.reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, common.ErrNoSelection
	}
	path := trimmed(line)
	if path == "" {
		return nil, common.ErrNoSelection
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}

	fi, err := osStat(path)
	if err != nil || fi.IsDir() {
		// The picker session yielded no usable asset.
		return nil, common.ErrNoSelection
	}

	return &Asset{URI: "file://" + path}, nil
}

func trimmed(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
