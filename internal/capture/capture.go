// Package capture provides photo capture devices for the capture pipeline.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"photojournal/internal/storage"
)

var (
	// ErrCancelled is returned by CapturePhoto when the user took no photo.
	ErrCancelled = errors.New("capture cancelled")
	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("unsupported photo type")
)

// Device is a photo capture capability. CapturePhoto returns an opaque
// reference to the stored photo.
type Device interface {
	RequestPermission(ctx context.Context) (bool, error)
	CapturePhoto(ctx context.Context) (string, error)
}

// Photo is a client-supplied image stream.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadDevice "captures" a photo uploaded with a request by streaming it
// into object storage. The object key is the image reference.
type UploadDevice struct {
	Granted bool
	Photo   *Photo

	objects storage.Storage
	prefix  string
	newID   func() string
}

// NewUploadDevice returns a device that stores photo under prefix. A nil photo
// behaves like a cancelled capture.
func NewUploadDevice(objects storage.Storage, prefix string, granted bool, photo *Photo) *UploadDevice {
	return &UploadDevice{
		Granted: granted,
		Photo:   photo,
		objects: objects,
		prefix:  strings.Trim(prefix, "/"),
		newID:   uuid.NewString,
	}
}

func (d *UploadDevice) RequestPermission(ctx context.Context) (bool, error) {
	return d.Granted, ctx.Err()
}

func (d *UploadDevice) CapturePhoto(ctx context.Context) (string, error) {
	if d.Photo == nil || d.Photo.Body == nil || d.Photo.Size == 0 {
		return "", ErrCancelled
	}
	ct := d.Photo.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	if ct != "application/octet-stream" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	key := d.newID() + strings.ToLower(path.Ext(d.Photo.Filename))
	if d.prefix != "" {
		key = d.prefix + "/" + key
	}

	size := d.Photo.Size
	if size <= 0 {
		size = -1
	}
	_, err := d.objects.Put(ctx, key, d.Photo.Body, storage.PutObjectOptions{
		Size:        size,
		ContentType: ct,
		Metadata:    map[string]string{"original-filename": path.Base(d.Photo.Filename)},
	})
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return key, nil
}
