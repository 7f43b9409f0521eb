package state

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
	getErr  error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

type fakeLockTable struct {
	items map[string]bool
}

func (f *fakeLockTable) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	id := in.Item["LockID"].(*dbtypes.AttributeValueMemberS).Value
	if f.items[id] {
		return nil, &dbtypes.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = true
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeLockTable) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, in.Key["LockID"].(*dbtypes.AttributeValueMemberS).Value)
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestS3Backend(encrypt bool) (*s3Backend, *fakeS3, *fakeLockTable) {
	objects := &fakeS3{objects: map[string][]byte{}}
	table := &fakeLockTable{items: map[string]bool{}}
	return &s3Backend{
		bucket:   "bucket",
		key:      "stagehand/state.yml",
		table:    "locks",
		encrypt:  encrypt,
		s3Client: objects,
		dbClient: table,
	}, objects, table
}

func TestS3Backend_ReadMissingObject(t *testing.T) {
	b, _, _ := newTestS3Backend(false)

	state, err := b.Read(context.Background())
	require.NoError(t, err)
	assert.Zero(t, state.Serial)
	assert.NotEmpty(t, state.Lineage)
}

func TestS3Backend_WriteRead(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "")
	b, objects, _ := newTestS3Backend(true)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, sampleState()))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, objects.lastPut.ServerSideEncryption)
	assert.Contains(t, string(objects.objects["stagehand/state.yml"]), "serial: 3")

	state, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Serial)
	assert.Len(t, state.Resources, 2)
}

func TestS3Backend_ReadErrors(t *testing.T) {
	b, objects, _ := newTestS3Backend(false)

	objects.getErr = &smithy.GenericAPIError{Code: "NotFound"}
	_, err := b.Read(context.Background())
	require.NoError(t, err)

	objects.getErr = &smithy.GenericAPIError{Code: "AccessDenied"}
	_, err = b.Read(context.Background())
	assert.ErrorContains(t, err, "s3://bucket/stagehand/state.yml")
}

func TestS3Backend_Lock(t *testing.T) {
	b, _, table := newTestS3Backend(false)
	ctx := context.Background()

	require.NoError(t, b.Lock(ctx))
	assert.True(t, table.items["bucket/stagehand/state.yml"])
	assert.ErrorIs(t, b.Lock(ctx), ErrLocked)

	require.NoError(t, b.Unlock(ctx))
	assert.Empty(t, table.items)
}

func TestS3Backend_LockWithoutTable(t *testing.T) {
	b, _, _ := newTestS3Backend(false)
	b.dbClient = nil

	require.NoError(t, b.Lock(context.Background()))
	require.NoError(t, b.Unlock(context.Background()))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&s3types.NoSuchKey{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(errors.New("boom")))
}
