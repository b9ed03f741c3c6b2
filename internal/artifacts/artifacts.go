// Package artifacts stores the screenshots taken when an application fails.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/goapply/goapply/internal/utils"
)

// Store saves an artifact and returns where it can be found.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Config selects and configures the store. An empty type disables
// artifacts.
type Config struct {
	Type      StoreType `yaml:"type" env:"ARTIFACTS_TYPE"`
	Dir       string    `yaml:"dir" env:"ARTIFACTS_DIR" env-default:"artifacts"`
	Bucket    string    `yaml:"bucket" env:"AWS_S3_BUCKET"`
	Region    string    `yaml:"region" env:"AWS_REGION"`
	Prefix    string    `yaml:"prefix" env-default:"screenshots/"`
	AccessKey string    `yaml:"access_key" env:"AWS_ACCESS_KEY_ID"`
	SecretKey string    `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY"`
}

type StoreType string

const (
	NoStore    StoreType = ""
	LocalStore StoreType = "local"
	S3Store    StoreType = "s3"
)

// New returns the configured store, or nil when artifacts are disabled.
func New(c Config) (Store, error) {
	switch c.Type {
	case NoStore:
		return nil, nil
	case LocalStore:
		return NewDir(c.Dir)
	case S3Store:
		return NewS3(c)
	default:
		return nil, fmt.Errorf("artifact store of type '%s' not implemented", c.Type)
	}
}

// Name builds a unique artifact name from a platform and a job title.
func Name(platform, title string, t time.Time) (string, error) {
	base := utils.Slug(platform + " " + title)
	if base == "" {
		base = "artifact"
	}
	r, err := utils.RandomString(base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s.png", t.UTC().Format("20060102T150405"), r), nil
}

// Dir writes artifacts into a local directory.
type Dir struct {
	path string
}

func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, errors.New("dir needs to be specified for the local artifact store")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &Dir{path: dir}, nil
}

func (d *Dir) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filename := path.Join(d.path, path.Base(name))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// S3 uploads artifacts to a bucket.
type S3 struct {
	client s3iface.S3API
	bucket string
	region string
	prefix string
}

func NewS3(c Config) (*S3, error) {
	if c.Bucket == "" || c.Region == "" {
		return nil, errors.New("bucket and region need to be specified for the s3 artifact store")
	}
	cfg := &aws.Config{Region: aws.String(c.Region)}
	if c.AccessKey != "" && c.SecretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(c.AccessKey, c.SecretKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return newS3(s3.New(sess), c), nil
}

func newS3(client s3iface.S3API, c Config) *S3 {
	return &S3{client: client, bucket: c.Bucket, region: c.Region, prefix: c.Prefix}
}

func (s *S3) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := s.prefix + strings.TrimPrefix(name, "/")
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	u := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	slog.Debug("uploaded artifact", slog.String("url", u))
	return u, nil
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
