package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/files/"})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "resumes/a/cv.pdf", strings.NewReader("%PDF-1.4"), "application/pdf"))

	ok, err := s.Exists(ctx, "resumes/a/cv.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, "resumes/a/cv.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(body))

	assert.Equal(t, "/files/resumes/a/cv.pdf", s.GetURL("resumes/a/cv.pdf"))
	signed, err := s.GetSignedURL(ctx, "resumes/a/cv.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, s.GetURL("resumes/a/cv.pdf"), signed)
	assert.Equal(t, "local", s.Provider())

	require.NoError(t, s.Delete(ctx, "resumes/a/cv.pdf"))
	require.NoError(t, s.Delete(ctx, "resumes/a/cv.pdf"), "deleting twice is fine")

	_, err = s.Get(ctx, "resumes/a/cv.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_PathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(Config{BasePath: base})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "../../escape.txt", strings.NewReader("x"), "text/plain"))
	ok, err := s.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok, "parent segments are cleaned away")

	assert.Error(t, s.Save(ctx, "/", strings.NewReader("x"), "text/plain"))
}

func TestNewStorage_Types(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)

	_, err = NewStorage(Config{Type: "cloudflare_r2", Bucket: "b"})
	assert.Error(t, err, "r2 needs endpoint or account id")

	_, err = NewStorage(Config{Type: "s3"})
	assert.Error(t, err, "s3 needs bucket")

	r2, err := NewStorage(Config{Type: "cloudflare_r2", Bucket: "media", AccountID: "acc", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "cloudflare_r2", r2.Provider())
	assert.Equal(t, "https://media.r2.dev/photos/p.png", r2.GetURL("photos/p.png"))
}

func TestS3Storage_SignedURL(t *testing.T) {
	s, err := NewS3Storage(Config{Bucket: "greenjobs", Region: "eu-west-1", AccessKey: "AKIDEXAMPLE", SecretKey: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "https://greenjobs.s3.eu-west-1.amazonaws.com/photos/p.png", s.GetURL("photos/p.png"))

	url, err := s.GetSignedURL(context.Background(), "resumes/cv.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "resumes/cv.pdf")
	assert.Contains(t, url, "X-Amz-Signature=")
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, awserr.New("NotFound", "missing", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakeUploader struct {
	store *fakeS3
	acls  map[string]string
}

func (u *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return u.UploadWithContext(context.Background(), in, opts...)
}

func (u *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.store.objects[*in.Key] = data
	u.acls[*in.Key] = aws.StringValue(in.ACL)
	return &s3manager.UploadOutput{}, nil
}

func TestObjectStorage_WithFakeClient(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	uploader := &fakeUploader{store: client, acls: map[string]string{}}
	s := NewObjectStorageWithClient(client, uploader, "bucket", "https://cdn.example.com/", "s3", true)

	require.NoError(t, s.Save(ctx, "photos/p.png", strings.NewReader("png"), "image/png"))
	require.NoError(t, s.Save(ctx, "resumes/cv.pdf", strings.NewReader("pdf"), "application/pdf"))
	assert.Equal(t, s3.ObjectCannedACLPublicRead, uploader.acls["photos/p.png"])
	assert.Empty(t, uploader.acls["resumes/cv.pdf"], "resumes stay private")

	ok, err := s.Exists(ctx, "photos/p.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, "photos/p.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "png", string(body))

	require.NoError(t, s.Delete(ctx, "photos/p.png"))
	ok, err = s.Exists(ctx, "photos/p.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "photos/p.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "https://cdn.example.com/photos/p.png", s.GetURL("/photos/p.png"))
}
