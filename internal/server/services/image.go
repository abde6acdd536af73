package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/access"
	sc "github.com/dmitrijs2005/memoir/internal/server/config"
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
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageUpload tells the client where to PUT the image and which URL to store
// as the memory's imageUrl afterwards.
type ImageUpload struct {
	Key       string
	UploadURL string
	ImageURL  string
	ExpiresAt time.Time
}

// ImageService hands out presigned S3 upload URLs for memory images.
type ImageService struct {
	config *sc.Config
	now    func() time.Time
}

func NewImageService(cfg *sc.Config) *ImageService {
	return &ImageService{config: cfg, now: time.Now}
}

// storageKey places images under the owner's id and the upload date.
func (s *ImageService) storageKey(userID int64, ext string) string {
	d := s.now().UTC()
	return path.Join("memories", fmt.Sprint(userID), d.Format("2006/01/02"), uuid.NewString()+ext)
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
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

// PresignUpload returns a presigned PUT for a new image of the given content
// type.
func (s *ImageService) PresignUpload(ctx context.Context, actor *access.Actor, contentType string) (*ImageUpload, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", common.ErrorValidation, contentType)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(actor.UserID, ext)
	validity := s.config.ImageUploadValidityDuration

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return nil, err
	}

	return &ImageUpload{
		Key:       key,
		UploadURL: req.URL,
		ImageURL:  s.config.ImageBaseURL() + "/" + key,
		ExpiresAt: s.now().Add(validity),
	}, nil
}
