package state

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/ir"
)

// ObjectStore is the subset of an S3-compatible object store the minio
// backend uses.
type ObjectStore interface {
	// GetObject downloads an object.
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	// PutObject uploads an object.
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	// StatObject fetches object metadata.
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	// RemoveObject deletes an object.
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioBackend stores state in any S3-compatible store reachable through
// minio-go. Locking uses a sibling lock object.
type MinioBackend struct {
	store  ObjectStore
	bucket string
	key    string
	now    func() time.Time
}

// NewMinioBackend creates a backend over an existing store.
func NewMinioBackend(store ObjectStore, bucket, key string) *MinioBackend {
	return &MinioBackend{
		store:  store,
		bucket: bucket,
		key:    key,
		now:    time.Now,
	}
}

func newMinioBackend(cfg config.StateConfig, key string) (Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio backend requires a bucket (STAGEHAND_STATE_BUCKET)")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio backend requires an endpoint (STAGEHAND_STATE_ENDPOINT)")
	}

	store, err := newMinioStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewMinioBackend(store, cfg.Bucket, key), nil
}

func newMinioStore(cfg config.StateConfig) (ObjectStore, error) {
	// minio expects the endpoint without a scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := 30 * time.Second
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &minioStore{Client: client}, nil
}

type minioStore struct {
	*minio.Client
}

func (s *minioStore) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, bucketName, objectName, opts)
}

func (b *MinioBackend) Read(ctx context.Context) (*ir.State, error) {
	obj, err := b.store.GetObject(ctx, b.bucket, b.key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read state from %s/%s: %w", b.bucket, b.key, err)
	}
	defer obj.Close()

	// minio defers request errors to the first read
	content, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read state from %s/%s: %w", b.bucket, b.key, err)
	}

	state, err := DecodeState(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load state from %s/%s: %w", b.bucket, b.key, err)
	}
	return state, nil
}

func (b *MinioBackend) Write(ctx context.Context, state *ir.State) error {
	content, err := marshalState(state)
	if err != nil {
		return err
	}

	_, err = b.store.PutObject(ctx, b.bucket, b.key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/yaml"})
	if err != nil {
		return fmt.Errorf("failed to write state to %s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

// Lock is best effort: two processes racing between stat and put can both
// acquire it.
func (b *MinioBackend) Lock(ctx context.Context) error {
	info, err := b.store.StatObject(ctx, b.bucket, b.lockKey(), minio.StatObjectOptions{})
	switch {
	case err == nil:
		if b.now().Sub(info.LastModified) <= StaleLockAge {
			return fmt.Errorf("%w (lock object: %s/%s)", ErrLocked, b.bucket, b.lockKey())
		}
	case !isNoSuchKey(err):
		return fmt.Errorf("failed to check lock: %w", err)
	}

	holder := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), b.now().UTC().Format(time.RFC3339))
	_, err = b.store.PutObject(ctx, b.bucket, b.lockKey(), strings.NewReader(holder), int64(len(holder)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (b *MinioBackend) Unlock(ctx context.Context) error {
	if err := b.store.RemoveObject(ctx, b.bucket, b.lockKey(), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (b *MinioBackend) lockKey() string {
	return b.key + ".lock"
}

func isNoSuchKey(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
