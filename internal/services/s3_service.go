package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/models"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true, "avif": true,
}

// S3Host serves gallery images straight from an S3-compatible bucket.
type S3Host struct {
	client    *s3.Client
	bucket    string
	endpoint  string
	region    string
	pathStyle bool
}

func NewS3Host(cfg *config.Config) (*S3Host, error) {
	client, err := buildClient(cfg.MediaS3Endpoint, cfg.MediaS3Region, cfg.MediaS3AccessKeyID, cfg.MediaS3SecretAccessKey, cfg.MediaS3UsePathStyle)
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}
	return &S3Host{
		client:    client,
		bucket:    cfg.MediaImagesBucket,
		endpoint:  strings.TrimRight(cfg.MediaS3Endpoint, "/"),
		region:    cfg.MediaS3Region,
		pathStyle: cfg.MediaS3UsePathStyle,
	}, nil
}

func buildClient(endpoint, region, key, secret string, pathStyle bool) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithLogger(logging.NewStandardLogger(nil)),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

// ListImages lists image objects under prefix, at most max of them.
func (h *S3Host) ListImages(ctx context.Context, prefix string, max int) ([]models.MediaRecord, error) {
	records := []models.MediaRecord{}
	var token *string
	for len(records) < max {
		out, err := h.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(h.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
			MaxKeys:           aws.Int32(int32(max)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", h.bucket, prefix, err)
		}
		for _, o := range out.Contents {
			rec, ok := h.recordFromObject(o)
			if !ok {
				continue
			}
			records = append(records, rec)
			if len(records) == max {
				break
			}
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return records, nil
}

func (h *S3Host) recordFromObject(o s3types.Object) (models.MediaRecord, bool) {
	key := aws.ToString(o.Key)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if !imageExtensions[ext] {
		return models.MediaRecord{}, false
	}
	rec := models.MediaRecord{
		AssetID:   strings.Trim(aws.ToString(o.ETag), `"`),
		PublicID:  strings.TrimSuffix(key, path.Ext(key)),
		Folder:    folderOf(key),
		Format:    ext,
		SecureURL: h.objectURL(key),
		Bytes:     aws.ToInt64(o.Size),
	}
	if o.LastModified != nil {
		rec.CreatedAt = o.LastModified.UTC().Format(time.RFC3339)
	}
	return rec, true
}

// objectURL builds the public URL of a key, escaping each path segment.
func (h *S3Host) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	escaped := strings.Join(segments, "/")

	switch {
	case h.endpoint != "" && h.pathStyle:
		return fmt.Sprintf("%s/%s/%s", h.endpoint, h.bucket, escaped)
	case h.endpoint != "":
		u, err := url.Parse(h.endpoint)
		if err != nil {
			return fmt.Sprintf("%s/%s/%s", h.endpoint, h.bucket, escaped)
		}
		return fmt.Sprintf("%s://%s.%s/%s", u.Scheme, h.bucket, u.Host, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, escaped)
	}
}
