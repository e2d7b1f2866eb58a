package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/afero"
)

func fixedNow(t *testing.T) {
	t.Helper()
	original := now
	now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	t.Cleanup(func() { now = original })
}

func TestLocalSaveAndLoad(t *testing.T) {
	fixedNow(t)

	fs := afero.NewMemMapFs()
	local, err := NewLocal(fs, "uploads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key, err := local.Save(context.Background(), "../../etc/cv.pdf", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "20240309140507-cv.pdf" {
		t.Fatalf("unexpected key: %s", key)
	}

	if ok, _ := afero.Exists(fs, "uploads/20240309140507-cv.pdf"); !ok {
		t.Fatalf("expected file inside upload dir")
	}

	data, err := local.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestLocalLoadErrors(t *testing.T) {
	local, err := NewLocal(afero.NewMemMapFs(), "uploads")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := local.Load(context.Background(), "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := local.Load(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected invalid key error")
	}
	if _, err := local.Save(context.Background(), "  ", nil); err == nil {
		t.Fatalf("expected invalid name error")
	}
}

type fakeObjects struct {
	objects map[string][]byte
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3SaveAndLoad(t *testing.T) {
	fixedNow(t)

	objects := &fakeObjects{objects: map[string][]byte{}}
	store := &S3{client: objects, bucket: "cvs"}

	key, err := store.Save(context.Background(), "resume.docx", []byte("docx"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := objects.objects["cvs/20240309140507-resume.docx"]; !ok {
		t.Fatalf("expected object in bucket, got %v", objects.objects)
	}

	data, err := store.Load(context.Background(), key)
	if err != nil || string(data) != "docx" {
		t.Fatalf("unexpected load result %q, %v", data, err)
	}

	if _, err := store.Load(context.Background(), "nope.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(context.Background(), Config{Backend: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}
