package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrExists is returned by DirSink when the target file
// is already present and overwriting is disabled.
var ErrExists = errors.New("target already exists")

// Sink stores converted documents. `name` is a slash separated
// path, relative to the converted directory.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// DirSink writes documents below a local directory.
type DirSink struct {
	Root      string
	Overwrite bool
}

func (s DirSink) Put(_ context.Context, name, _ string, data []byte) error {
	target := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !s.Overwrite {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(target, flag, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", target, ErrExists)
		}
		return err
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	return f.Close()
}

func (s DirSink) String() string { return s.Root }

// ObjectPutter is the subset of *s3.Client used by S3Sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads documents to an S3 bucket, under Prefix.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Prefix string
}

func (s S3Sink) Put(ctx context.Context, name, contentType string, data []byte) error {
	key := path.Join(s.Prefix, name)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}

func (s S3Sink) String() string { return "s3://" + path.Join(s.Bucket, s.Prefix) }

// S3Config configures the client built by NewS3Client.
type S3Config struct {
	Region       string
	Endpoint     string // optional, for S3 compatible stores
	UsePathStyle bool
}

// NewS3Client builds a client whose credentials are read from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("missing AWS_ACCESS_KEY_ID or AWS_SECRET_ACCESS_KEY")
	}
	return creds, nil
}

// ParseSinkURL selects a sink from an output location: either
// s3://bucket/prefix or a local directory. `newClient` is only
// called for S3 locations.
func ParseSinkURL(location string, overwrite bool, newClient func() ObjectPutter) (Sink, error) {
	if !strings.HasPrefix(location, "s3://") {
		if location == "" {
			return nil, errors.New("empty output location")
		}
		return DirSink{Root: location, Overwrite: overwrite}, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid output location: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing bucket in %q", location)
	}
	return S3Sink{
		Client: newClient(),
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}
