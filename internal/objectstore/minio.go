// Package objectstore stores uploaded images in MinIO or any S3 compatible
// service.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures the connection to the object store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base used for returned object URLs, e.g. a CDN. When
	// empty, URLs point at the endpoint in path style.
	PublicURL string
}

// MinioStore uploads objects to a single bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New connects to the object store and creates the bucket if it is missing.
func New(ctx context.Context, opts Options) (*MinioStore, error) {
	store, err := newStore(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := store.client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := store.client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return store, nil
}

func newStore(opts Options) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinioStore{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

// Put uploads an object.
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// URL returns the address clients use to fetch key.
func (m *MinioStore) URL(key string) string {
	if m.publicURL != "" {
		return m.publicURL + "/" + key
	}
	return m.client.EndpointURL().JoinPath(m.bucket, key).String()
}

// Ping checks that the bucket is reachable.
func (m *MinioStore) Ping(ctx context.Context) error {
	if _, err := m.client.BucketExists(ctx, m.bucket); err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	return nil
}

// Host returns the endpoint host, used in log lines.
func (m *MinioStore) Host() string {
	u := m.client.EndpointURL()
	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
}
