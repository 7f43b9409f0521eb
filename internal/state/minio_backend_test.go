package state_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/picklr-io/stagehand/internal/state"
	"github.com/picklr-io/stagehand/internal/state/mocks"
)

const (
	bucket  = "states"
	key     = "stagehand/state.yml"
	lockKey = key + ".lock"
)

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func noSuchKey() error {
	return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
}

func TestMinioBackend_ReadMissingObject(t *testing.T) {
	store := new(mocks.ObjectStore)
	store.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(io.NopCloser(errReader{err: noSuchKey()}), nil)

	b := state.NewMinioBackend(store, bucket, key)
	st, err := b.Read(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Serial)
	store.AssertExpectations(t)
}

func TestMinioBackend_ReadState(t *testing.T) {
	t.Setenv(state.EncryptionKeyEnvVar, "")
	store := new(mocks.ObjectStore)
	body := "version: 1\nserial: 7\nlineage: abc\nresources: []\n"
	store.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	st, err := state.NewMinioBackend(store, bucket, key).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, st.Serial)
	assert.Equal(t, "abc", st.Lineage)
}

func TestMinioBackend_ReadFailure(t *testing.T) {
	store := new(mocks.ObjectStore)
	store.On("GetObject", mock.Anything, bucket, key, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := state.NewMinioBackend(store, bucket, key).Read(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestMinioBackend_Write(t *testing.T) {
	t.Setenv(state.EncryptionKeyEnvVar, "")
	store := new(mocks.ObjectStore)
	store.On("PutObject", mock.Anything, bucket, key, mock.Anything, mock.AnythingOfType("int64"),
		mock.MatchedBy(func(opts minio.PutObjectOptions) bool { return opts.ContentType == "application/yaml" })).
		Return(minio.UploadInfo{}, nil)

	st := state.NewState()
	st.Serial = 4
	require.NoError(t, state.NewMinioBackend(store, bucket, key).Write(context.Background(), st))
	store.AssertExpectations(t)
}

func TestMinioBackend_Lock(t *testing.T) {
	store := new(mocks.ObjectStore)
	store.On("StatObject", mock.Anything, bucket, lockKey, mock.Anything).
		Return(minio.ObjectInfo{}, noSuchKey()).Once()
	store.On("PutObject", mock.Anything, bucket, lockKey, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()
	store.On("RemoveObject", mock.Anything, bucket, lockKey, mock.Anything).Return(nil).Once()

	b := state.NewMinioBackend(store, bucket, key)
	require.NoError(t, b.Lock(context.Background()))
	require.NoError(t, b.Unlock(context.Background()))
	store.AssertExpectations(t)
}

func TestMinioBackend_LockHeld(t *testing.T) {
	store := new(mocks.ObjectStore)
	store.On("StatObject", mock.Anything, bucket, lockKey, mock.Anything).
		Return(minio.ObjectInfo{LastModified: time.Now()}, nil)

	err := state.NewMinioBackend(store, bucket, key).Lock(context.Background())
	assert.ErrorIs(t, err, state.ErrLocked)
	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMinioBackend_LockStale(t *testing.T) {
	store := new(mocks.ObjectStore)
	store.On("StatObject", mock.Anything, bucket, lockKey, mock.Anything).
		Return(minio.ObjectInfo{LastModified: time.Now().Add(-time.Hour)}, nil)
	store.On("PutObject", mock.Anything, bucket, lockKey, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, state.NewMinioBackend(store, bucket, key).Lock(context.Background()))
	store.AssertExpectations(t)
}
