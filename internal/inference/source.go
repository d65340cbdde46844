package inference

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/terraincognita07/endocare/internal/config"
)

// ArtifactSource yields the raw bytes of a model artifact.
type ArtifactSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

type LocalFileSource struct {
	Path string
}

func (source LocalFileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(source.Path)
}

func (source LocalFileSource) String() string {
	return source.Path
}

type ObjectStoreSource struct {
	client *minio.Client
	Bucket string
	Key    string
}

func NewObjectStoreSource(cfg config.ObjectStoreConfig, bucket string, key string) (*ObjectStoreSource, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("model.object_store.endpoint is required for %s/%s", bucket, key)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &ObjectStoreSource{client: client, Bucket: bucket, Key: key}, nil
}

func (source *ObjectStoreSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if _, err := source.client.StatObject(ctx, source.Bucket, source.Key, minio.StatObjectOptions{}); err != nil {
		return nil, err
	}
	return source.client.GetObject(ctx, source.Bucket, source.Key, minio.GetObjectOptions{})
}

func (source *ObjectStoreSource) String() string {
	return "s3://" + source.Bucket + "/" + source.Key
}

// ParseObjectURI splits s3://bucket/key or minio://bucket/key. ok is false
// for plain filesystem paths.
func ParseObjectURI(raw string) (bucket string, key string, ok bool, err error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "s3://") && !strings.HasPrefix(lower, "minio://") {
		return "", "", false, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", true, fmt.Errorf("parse artifact uri %q: %w", raw, err)
	}
	bucket = parsed.Host
	key = strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("artifact uri %q needs both bucket and key", raw)
	}
	return bucket, key, true, nil
}

// NewArtifactSource picks a local or object-store source for path.
func NewArtifactSource(path string, objectStore config.ObjectStoreConfig) (ArtifactSource, error) {
	bucket, key, isObject, err := ParseObjectURI(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if !isObject {
		return LocalFileSource{Path: path}, nil
	}
	source, err := NewObjectStoreSource(objectStore, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return source, nil
}
