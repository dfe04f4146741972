package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/common"
	sc "github.com/dmitrijs2005/foodlog/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const photoPrefix = "photos/"

// PhotoKeyPrefix is the storage prefix of every photo uploaded by ownerID.
func PhotoKeyPrefix(ownerID string) string {
	return photoPrefix + ownerID + "/"
}

// NewPhotoKey returns a fresh storage key under the prefix of ownerID.
func NewPhotoKey(ownerID string, now time.Time) string {
	return fmt.Sprintf("%s%d/%02d/%v", PhotoKeyPrefix(ownerID), now.Year(), now.Month(), uuid.New())
}

// checkPhotoKey accepts an empty key or one uploaded by ownerID.
func checkPhotoKey(ownerID, key string) error {
	if key == "" || strings.HasPrefix(key, PhotoKeyPrefix(ownerID)) {
		return nil
	}
	return fmt.Errorf("%w: photo %s", common.ErrForbidden, key)
}

// MediaService hands out presigned S3 URLs for food and recipe photos. The
// bytes never pass through the server.
type MediaService struct {
	config *sc.Config
	now    func() time.Time
}

func NewMediaService(config *sc.Config) *MediaService {
	return &MediaService{config: config, now: time.Now}
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPhotoUpload returns a new key of ownerID and a URL to PUT the photo to.
func (s *MediaService) PresignPhotoUpload(ctx context.Context, ownerID string) (string, string, error) {

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := NewPhotoKey(ownerID, s.now())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PhotoURLValidityDuration))

	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignPhotoDownload returns a URL to GET the photo stored at key. Keys of
// other users are common.ErrForbidden.
func (s *MediaService) PresignPhotoDownload(ctx context.Context, ownerID, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty photo key", common.ErrInvalidInput)
	}
	if err := checkPhotoKey(ownerID, key); err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PhotoURLValidityDuration))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
