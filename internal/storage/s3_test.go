package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket honouring If-None-Match: *.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Bucket+"/"+*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	k := *in.Bucket + "/" + *in.Key
	if in.IfNoneMatch != nil && *in.IfNoneMatch == "*" {
		if _, ok := f.objects[k]; ok {
			return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
		}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[k] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Blob(t *testing.T) {
	b := NewS3Blob(newFakeS3(), "vaults", "alice", "vault")
	require.Equal(t, "s3://vaults/alice/vault", b.Location())
	exerciseBlob(t, b)
}

func TestS3Blob_EmptyPrefix(t *testing.T) {
	b := NewS3Blob(newFakeS3(), "vaults", "", "salt")
	require.Equal(t, "s3://vaults/salt", b.Location())
}

func TestS3Blob_ConcurrentCreate(t *testing.T) {
	exerciseConcurrentCreate(t, NewS3Blob(newFakeS3(), "vaults", "", "salt"))
}

func TestS3Blob_PutErrorIsWrapped(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("network down")
	b := NewS3Blob(fake, "vaults", "", "vault")

	err := b.Write(context.Background(), []byte("x"))
	require.ErrorContains(t, err, "network down")

	err = b.Create(context.Background(), []byte("x"))
	require.ErrorContains(t, err, "network down")
	require.NotErrorIs(t, err, ErrAlreadyExists)
}

func TestNewS3Client_AppliesSettings(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "eu-west-1", lo.Region)

		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		require.Equal(t, "minioadmin", creds.AccessKeyID)
		require.Equal(t, "miniopass", creds.SecretAccessKey)
		return aws.Config{}, nil
	}

	var opts s3.Options
	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	client, err := newS3Client(context.Background(), S3Config{
		Region:       "eu-west-1",
		RootUser:     "minioadmin",
		RootPassword: "miniopass",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "vaults",
	})
	require.NoError(t, err)
	require.Same(t, fake, client)
	require.NotNil(t, opts.BaseEndpoint)
	require.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	require.True(t, opts.UsePathStyle)
}

func TestNewS3Client_LoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := newS3Client(context.Background(), S3Config{Region: "us-east-1"})
	require.ErrorContains(t, err, "no config")
}
