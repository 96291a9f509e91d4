package kvstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"photojournal/internal/storage"
)

const blobContentType = "application/json"

// ObjectStore keeps each key as one object under a folder of an S3-compatible
// bucket. A PUT replaces the object whole.
type ObjectStore struct {
	objects storage.Storage
	folder  string
}

// NewObject returns a Store writing objects below folder.
func NewObject(objects storage.Storage, folder string) *ObjectStore {
	return &ObjectStore{objects: objects, folder: folder}
}

func (o *ObjectStore) objectKey(key string) string {
	return path.Join(o.folder, key)
}

func (o *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := o.objects.Get(ctx, o.objectKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (o *ObjectStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := o.objects.Put(ctx, o.objectKey(key), bytes.NewReader(value), storage.PutObjectOptions{
		Size:        int64(len(value)),
		ContentType: blobContentType,
	})
	return err
}

func (o *ObjectStore) Remove(ctx context.Context, key string) error {
	return o.objects.Delete(ctx, o.objectKey(key))
}

func (o *ObjectStore) Ping(ctx context.Context) error {
	return o.objects.Ping(ctx)
}
