package artifacts

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

func TestName(t *testing.T) {
	n, err := Name("linkedin", "Backend Engineer", time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(n, "20240304T050607-linkedin-backend-engineer-") || !strings.HasSuffix(n, ".png") {
		t.Fatalf("expected a timestamped slug but got %q", n)
	}
	n, _ = Name("", "???", time.Now())
	if !strings.Contains(n, "-artifact-") {
		t.Fatalf("expected a fallback base name but got %q", n)
	}
}

func TestNew(t *testing.T) {
	s, err := New(Config{})
	if err != nil || s != nil {
		t.Fatalf("expected no store but got %v, %v", s, err)
	}
	if _, err := New(Config{Type: S3Store}); err == nil {
		t.Fatalf("expected an error for an s3 store without bucket")
	}
	if _, err := New(Config{Type: "ftp"}); err == nil {
		t.Fatalf("expected an error for an unknown store")
	}
}

func TestDirSave(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{Type: LocalStore, Dir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, err := s.Save(context.Background(), "../escape.png", []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(loc, dir) {
		t.Fatalf("expected the file to stay inside %s but got %s", dir, loc)
	}
	b, _ := os.ReadFile(loc)
	if string(b) != "png" {
		t.Fatalf("expected the content to be written but got %q", b)
	}
}

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Save(t *testing.T) {
	fake := &fakeS3{}
	s := newS3(fake, Config{Bucket: "bucket", Region: "eu-west-1", Prefix: "screenshots/"})
	u, err := s.Save(context.Background(), "a.png", []byte("data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "https://bucket.s3.eu-west-1.amazonaws.com/screenshots/a.png" {
		t.Fatalf("expected the object url but got %s", u)
	}
	if aws.StringValue(fake.input.Key) != "screenshots/a.png" || aws.StringValue(fake.input.ContentType) != "image/png" {
		t.Fatalf("expected key and content type to be set but got %v", fake.input)
	}
	if string(fake.body) != "data" {
		t.Fatalf("expected the body to be uploaded but got %q", fake.body)
	}

	fake.err = errors.New("denied")
	if _, err := s.Save(context.Background(), "b.png", nil); err == nil {
		t.Fatalf("expected the upload error to be returned")
	}
}
