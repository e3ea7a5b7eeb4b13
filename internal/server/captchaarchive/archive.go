// Package captchaarchive keeps labelled CAPTCHA images in S3 so the OCR
// model can be evaluated against what CCXP actually accepted.
package captchaarchive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/google/uuid"
)

// ImageFetcher downloads the CAPTCHA image of a challenge.
type ImageFetcher interface {
	FetchCaptchaImage(ctx context.Context, challengeID string) ([]byte, error)
}

// ObjectPutter is the S3 call the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Settings locate the bucket. BaseEndpoint is optional and points the
// client at MinIO or another S3-compatible store.
type Settings struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// newS3Client is a seam for tests.
var newS3Client = func(ctx context.Context, s Settings) (ObjectPutter, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region), // обязательный параметр
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKey,
			s.SecretKey,
			"", // токен (не нужен)
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type Archive struct {
	s3     ObjectPutter
	bucket string
	images ImageFetcher
	newID  func() string
}

// New builds an Archive writing to s.Bucket.
func New(ctx context.Context, s Settings, images ImageFetcher) (*Archive, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("captcha archive: bucket is required")
	}
	client, err := newS3Client(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("captcha archive: %w", err)
	}
	return NewWithClient(client, s.Bucket, images), nil
}

func NewWithClient(client ObjectPutter, bucket string, images ImageFetcher) *Archive {
	return &Archive{s3: client, bucket: bucket, images: images, newID: uuid.NewString}
}

// Archive fetches the image of sample's challenge and stores it under
// ObjectKey.
func (a *Archive) Archive(ctx context.Context, sample models.CaptchaSample) error {
	img, err := a.images.FetchCaptchaImage(ctx, sample.ChallengeID)
	if err != nil {
		return fmt.Errorf("fetch captcha image: %w", err)
	}

	key := ObjectKey(sample, a.newID())
	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img),
		ContentType: aws.String("image/png"),
		Metadata: map[string]string{
			"answer":  sample.Answer,
			"verdict": sample.Verdict,
		},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// ObjectKey is captcha/<verdict>/<yyyy>/<mm>/<dd>/<id>_<answer>.png. Answer
// characters outside [0-9A-Za-z] are replaced with '_'.
func ObjectKey(sample models.CaptchaSample, id string) string {
	d := sample.CapturedAt.UTC()
	return fmt.Sprintf("captcha/%s/%04d/%02d/%02d/%s_%s.png",
		sample.Verdict, d.Year(), int(d.Month()), d.Day(), id, sanitize(sample.Answer))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		}
		return '_'
	}, s)
}
