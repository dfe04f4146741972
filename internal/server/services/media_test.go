package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/foodlog/internal/common"
	sc "github.com/dmitrijs2005/foodlog/internal/server/config"
)

func newMediaSvc(t *testing.T) *MediaService {
	t.Helper()
	svc := NewMediaService(&sc.Config{
		S3Region:                 "us-east-1",
		S3RootUser:               "minioadmin",
		S3RootPassword:           "minioadmin",
		S3BaseEndpoint:           "http://127.0.0.1:9000",
		S3Bucket:                 "foodlog",
		PhotoURLValidityDuration: 5 * time.Minute,
	})
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

// stubS3 replaces the client factories and restores every seam on cleanup.
func stubS3(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func Test_getPresignClient_SuccessAndError(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	pc, err := svc.getPresignClient(context.Background())
	if err != nil {
		t.Fatalf("getPresignClient err: %v", err)
	}
	if pc == nil {
		t.Fatalf("nil presign client")
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint mismatch: %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatalf("path style addressing not enabled")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	pc, err = svc.getPresignClient(context.Background())
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v (pc=%v)", err, pc)
	}
}

func TestPresignPhotoUpload(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	var gotBucket, gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		if po.Expires != 5*time.Minute {
			t.Fatalf("expiry not applied: %v", po.Expires)
		}
		return &v4.PresignedHTTPRequest{URL: "http://storage/" + *in.Key}, nil
	}

	key, url, err := svc.PresignPhotoUpload(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PresignPhotoUpload err: %v", err)
	}
	if !strings.HasPrefix(key, "photos/user-1/2025/03/") {
		t.Fatalf("unexpected key %q", key)
	}
	if gotBucket != "foodlog" || gotKey != key {
		t.Fatalf("presigned %s/%s, want foodlog/%s", gotBucket, gotKey, key)
	}
	if url != "http://storage/"+key {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestPresignPhotoUpload_ErrorFromPresign(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}

	_, _, err := svc.PresignPhotoUpload(context.Background(), "user-1")
	if err == nil || err.Error() != "presign-put-fail" {
		t.Fatalf("want presign-put-fail, got %v", err)
	}
}

func TestPresignPhotoUpload_ErrorFromClientFactory(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, _, err := svc.PresignPhotoUpload(context.Background(), "user-1")
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("want load-fail, got %v", err)
	}
}

func TestPresignPhotoDownload(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://storage/" + *in.Key}, nil
	}

	url, err := svc.PresignPhotoDownload(context.Background(), "user-1", "photos/user-1/2025/03/a")
	if err != nil {
		t.Fatalf("PresignPhotoDownload err: %v", err)
	}
	if url != "http://storage/photos/user-1/2025/03/a" {
		t.Fatalf("unexpected url %q", url)
	}

	if _, err := svc.PresignPhotoDownload(context.Background(), "user-1", "photos/user-2/2025/03/a"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if _, err := svc.PresignPhotoDownload(context.Background(), "user-1", ""); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestPresignPhotoDownload_ErrorFromPresign(t *testing.T) {
	svc := newMediaSvc(t)
	stubS3(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	}

	_, err := svc.PresignPhotoDownload(context.Background(), "user-1", "photos/user-1/x")
	if err == nil || err.Error() != "presign-get-fail" {
		t.Fatalf("want presign-get-fail, got %v", err)
	}
}
