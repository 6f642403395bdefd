// internal/users/upload.go
// Avatar upload to S3 or local disk

package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const maxAvatarSize = 5 << 20 // 5 MB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrInvalidImage is returned for unsupported or oversized uploads
var ErrInvalidImage = errors.New("invalid image upload")

// Uploader stores an uploaded avatar and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
}

// validateUpload checks size and content type, returning the file extension
func validateUpload(header *multipart.FileHeader) (string, error) {
	if header.Size > maxAvatarSize {
		return "", fmt.Errorf("%w: file exceeds 5MB", ErrInvalidImage)
	}
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}
	return ext, nil
}

// s3Uploader stores avatars in an S3 bucket
type s3Uploader struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Uploader creates an S3-backed avatar uploader
func NewS3Uploader(region, bucket string) (Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &s3Uploader{
		client: s3.New(sess),
		bucket: bucket,
		region: region,
	}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext, err := validateUpload(header)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	_, err = u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(header.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

// localUploader stores avatars on disk for development
type localUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates a disk-backed avatar uploader
func NewLocalUploader(dir, baseURL string) (Uploader, error) {
	if err := os.MkdirAll(filepath.Join(dir, "avatars"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localUploader{dir: dir, baseURL: baseURL}, nil
}

func (u *localUploader) Upload(_ context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	ext, err := validateUpload(header)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	path := filepath.Join(u.dir, "avatars", name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/avatars/%s", strings.TrimRight(u.baseURL, "/"), name), nil
}
