// Package storage provides the S3/MinIO-backed object store used for
// email attachments. Uploaded files live in date-bucketed folders
// (attachments_YYYYMMDD key prefixes) and are shared with
// anyone-with-the-link read access.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/mailroomhq/mailroom/internal/config"
)

// FolderPrefix is the prefix of date-bucketed attachment folders.
const FolderPrefix = "attachments_"

// metadataFilenameKey stores the original filename on the object so that
// later fetches can recover it without parsing the storage key.
const metadataFilenameKey = "filename"

// ErrNotAuthorized reports that the storage session is missing or the
// credentials were rejected. Callers surface it as an authorization
// failure, distinct from size or transport failures.
var ErrNotAuthorized = errors.New("storage access not authorized")

// Object describes a stored attachment object.
type Object struct {
	// ID is the storage key, used later to fetch the object.
	ID          string
	Name        string
	URL         string
	SizeBytes   int64
	ContentType string
}

// FetchedObject is an Object together with its binary content.
type FetchedObject struct {
	Object
	Data []byte
}

// Service handles S3/MinIO operations for attachment storage
type Service struct {
	client        *s3.Client
	bucket        string
	endpointURL   string
	publicBaseURL string
	authURL       string
}

// NewService creates a storage service with an S3/MinIO client
func NewService(cfg *config.StorageConfig) *Service {
	var endpointURL string
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		endpointURL = cfg.Endpoint
	} else {
		protocol := "http"
		if cfg.UseSSL {
			protocol = "https"
		}
		endpointURL = protocol + "://" + cfg.Endpoint
	}

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		BaseEndpoint: aws.String(endpointURL),
		UsePathStyle: true, // Required for MinIO
	})

	return &Service{
		client:        client,
		bucket:        cfg.Bucket,
		endpointURL:   endpointURL,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		authURL:       cfg.AuthURL,
	}
}

// NewServiceWithClient creates a storage service with a custom client,
// used for testing.
func NewServiceWithClient(client *s3.Client, bucket string) *Service {
	return &Service{
		client: client,
		bucket: bucket,
	}
}

// AuthURL returns the remediation URL surfaced when access is denied.
func (s *Service) AuthURL() string {
	return s.authURL
}

// CheckAccess probes the bucket to verify that the storage session is
// authorized. Any failure is reported as ErrNotAuthorized with the
// underlying cause attached.
func (s *Service) CheckAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}
	return nil
}

// DateFolder returns the folder name for the given day, one folder per
// calendar day.
func DateFolder(t time.Time) string {
	return FolderPrefix + t.Format("20060102")
}

// Put stores data as a new object inside folder and returns its
// descriptor. The storage key embeds a UUID so same-named uploads on the
// same day never collide; the original filename is kept in object
// metadata.
func (s *Service) Put(ctx context.Context, folder, filename string, data []byte, contentType string) (*Object, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		name = "attachment"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s_%s", folder, uuid.New().String(), name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			metadataFilenameKey: name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	return &Object{
		ID:          key,
		Name:        name,
		URL:         s.PublicURL(key),
		SizeBytes:   int64(len(data)),
		ContentType: contentType,
	}, nil
}

// SetPublicRead shares the object so anyone with the link may view it.
func (s *Service) SetPublicRead(ctx context.Context, key string) error {
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("failed to set public-read on %s: %w", key, err)
	}
	return nil
}

// Fetch retrieves an object by its storage key, including its binary
// content, stored name, canonical URL, and byte size.
func (s *Service) Fetch(ctx context.Context, key string) (*FetchedObject, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	name := out.Metadata[metadataFilenameKey]
	if name == "" {
		name = NameFromKey(key)
	}

	contentType := "application/octet-stream"
	if out.ContentType != nil && *out.ContentType != "" {
		contentType = *out.ContentType
	}

	size := int64(len(data))
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return &FetchedObject{
		Object: Object{
			ID:          key,
			Name:        name,
			URL:         s.PublicURL(key),
			SizeBytes:   size,
			ContentType: contentType,
		},
		Data: data,
	}, nil
}

// DeleteObject deletes a single object.
func (s *Service) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the shareable link for a storage key.
func (s *Service) PublicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", s.endpointURL, s.bucket, key)
}

// NameFromKey recovers the display filename from a storage key of the
// form folder/uuid_name.
func NameFromKey(key string) string {
	base := path.Base(key)
	if idx := strings.IndexByte(base, '_'); idx >= 0 && idx < len(base)-1 {
		return base[idx+1:]
	}
	return base
}

// SanitizeFilename strips path traversal characters and bounds the
// filename length so keys stay valid.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return ""
	}

	for _, char := range []string{"..", "/", "\\", "\x00"} {
		filename = strings.ReplaceAll(filename, char, "")
	}
	filename = filepath.Base(filename)

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		name := filename[:len(filename)-len(ext)]
		if len(name) > 255-len(ext) {
			name = name[:255-len(ext)]
		}
		filename = name + ext
	}

	return filename
}
