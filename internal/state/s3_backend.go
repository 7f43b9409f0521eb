package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/ir"
	"github.com/picklr-io/stagehand/internal/logging"
)

const defaultRegion = "us-east-1"

// s3API is the subset of the S3 client the backend uses.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// lockAPI is the subset of the DynamoDB client used for locking.
type lockAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// s3Backend stores state in S3, locking through DynamoDB when a table is configured.
type s3Backend struct {
	bucket  string
	key     string
	table   string
	encrypt bool

	s3Client s3API
	dbClient lockAPI
}

func newS3Backend(ctx context.Context, cfg config.StateConfig, key string) (Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 backend requires a bucket (STAGEHAND_STATE_BUCKET)")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	b := &s3Backend{
		bucket:   cfg.Bucket,
		key:      key,
		table:    cfg.DynamoDBTable,
		encrypt:  cfg.Encrypt,
		s3Client: s3Client,
	}
	if cfg.DynamoDBTable != "" {
		b.dbClient = dynamodb.NewFromConfig(awsCfg)
	}
	return b, nil
}

func (b *s3Backend) Read(ctx context.Context) (*ir.State, error) {
	result, err := b.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		if isNotFound(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read state from s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer result.Body.Close()

	content, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	state, err := DecodeState(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load state from s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return state, nil
}

func (b *s3Backend) Write(ctx context.Context, state *ir.State) error {
	content, err := marshalState(state)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/yaml"),
	}
	if b.encrypt {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := b.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to write state to s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

func (b *s3Backend) Lock(ctx context.Context) error {
	if b.dbClient == nil {
		logging.Debug("no lock table configured, skipping state lock", "bucket", b.bucket, "key", b.key)
		return nil
	}

	holder := fmt.Sprintf("stagehand-%d-%d", os.Getpid(), time.Now().UnixNano())
	_, err := b.dbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item: map[string]dbtypes.AttributeValue{
			"LockID":  &dbtypes.AttributeValueMemberS{Value: b.lockID()},
			"Info":    &dbtypes.AttributeValueMemberS{Value: holder},
			"Created": &dbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(LockID)"),
	})
	if err != nil {
		var ccf *dbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w. If this is an error, delete the item with LockID=%q from DynamoDB table %q",
				ErrLocked, b.lockID(), b.table)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (b *s3Backend) Unlock(ctx context.Context) error {
	if b.dbClient == nil {
		return nil
	}

	_, err := b.dbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(b.table),
		Key: map[string]dbtypes.AttributeValue{
			"LockID": &dbtypes.AttributeValueMemberS{Value: b.lockID()},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (b *s3Backend) lockID() string {
	return b.bucket + "/" + b.key
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
