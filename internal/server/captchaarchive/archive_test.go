package captchaarchive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

type fakeImages struct {
	err error
	ids []string
}

func (f *fakeImages) FetchCaptchaImage(ctx context.Context, id string) ([]byte, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + id), nil
}

var sample = models.CaptchaSample{
	ChallengeID: "chal-7",
	Answer:      "123456",
	Verdict:     models.CaptchaAccepted,
	CapturedAt:  time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC),
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "captcha/accepted/2026/03/09/id1_123456.png", ObjectKey(sample, "id1"))

	odd := sample
	odd.Answer = "a/b c.."
	odd.Verdict = models.CaptchaRejected
	assert.Equal(t, "captcha/rejected/2026/03/09/id1_a_b_c__.png", ObjectKey(odd, "id1"))
}

func TestArchive_PutsImage(t *testing.T) {
	p, img := &fakePutter{}, &fakeImages{}
	a := NewWithClient(p, "samples", img)
	a.newID = func() string { return "fixed" }

	require.NoError(t, a.Archive(context.Background(), sample))
	assert.Equal(t, []string{"chal-7"}, img.ids)
	assert.Equal(t, "samples", aws.ToString(p.in.Bucket))
	assert.Equal(t, "captcha/accepted/2026/03/09/fixed_123456.png", aws.ToString(p.in.Key))
	assert.Equal(t, "image/png", aws.ToString(p.in.ContentType))
	assert.Equal(t, "accepted", p.in.Metadata["verdict"])
	assert.Equal(t, []byte("png:chal-7"), p.body)
}

func TestArchive_ImageError(t *testing.T) {
	p := &fakePutter{}
	a := NewWithClient(p, "samples", &fakeImages{err: errors.New("gone")})

	err := a.Archive(context.Background(), sample)
	assert.ErrorContains(t, err, "fetch captcha image")
	assert.Nil(t, p.in)
}

func TestArchive_PutError(t *testing.T) {
	a := NewWithClient(&fakePutter{err: errors.New("denied")}, "samples", &fakeImages{})

	err := a.Archive(context.Background(), sample)
	assert.ErrorContains(t, err, "denied")
}

func TestNew_UsesSeam(t *testing.T) {
	orig := newS3Client
	defer func() { newS3Client = orig }()

	var got Settings
	newS3Client = func(ctx context.Context, s Settings) (ObjectPutter, error) {
		got = s
		return &fakePutter{}, nil
	}

	s := Settings{Bucket: "b", Region: "us-east-1", AccessKey: "ak", SecretKey: "sk", BaseEndpoint: "http://minio:9000"}
	a, err := New(context.Background(), s, &fakeImages{})
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, s, got)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Settings{}, &fakeImages{})
	assert.ErrorContains(t, err, "bucket is required")

	orig := newS3Client
	defer func() { newS3Client = orig }()
	newS3Client = func(context.Context, Settings) (ObjectPutter, error) { return nil, errors.New("no region") }

	_, err = New(context.Background(), Settings{Bucket: "b"}, &fakeImages{})
	assert.ErrorContains(t, err, "no region")
}

func TestNewS3Client_Builds(t *testing.T) {
	c, err := newS3Client(context.Background(), Settings{
		Region: "us-east-1", AccessKey: "ak", SecretKey: "sk", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
