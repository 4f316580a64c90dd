// Package s3infra mints presigned URLs against the resources bucket.
// The backend never proxies object bytes: a minted URL is the capability,
// scoped to one key, one method and one expiry, and honored (or refused,
// after expiry) by S3 itself.
package s3infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onehope/resources-api/internal/config"
	"github.com/onehope/resources-api/internal/domain"
)

// Default TTLs. Uploads get a wide window for large transfers; read URLs are
// short so a leaked link (referrer, logs) goes stale quickly.
const (
	UploadTTL   = time.Hour
	DownloadTTL = 10 * time.Minute
	PreviewTTL  = 10 * time.Minute
)

// Presigner signs method-scoped, time-bounded URLs. Minting is a local
// computation, with no round trip to S3.
type Presigner struct {
	presign *s3.PresignClient
	bucket  string
}

// NewPresigner returns nil when the bucket or credentials are not
// configured. Callers treat a nil Presigner as storage-unavailable rather
// than an error: the portal runs fine without an object store, it just
// refuses presign requests.
func NewPresigner(cfg *config.Config) *Presigner {
	if cfg.S3Bucket == "" || cfg.AWSAccessKeyID == "" {
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config for S3: " + err.Error())
	}

	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(awsCfg, clientOpts...)
	return &Presigner{presign: s3.NewPresignClient(client), bucket: cfg.S3Bucket}
}

// UploadURL presigns a PUT for the given key with the content type pinned
// into the signature, so the capability cannot be replayed with a different
// body type.
func (p *Presigner) UploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put object: %w", err)
	}
	return req.URL, nil
}

// DownloadURL presigns a GET that forces a save-as with the given filename.
// Double quotes are stripped from the name so it cannot break out of the
// content-disposition header.
func (p *Presigner) DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	name := strings.ReplaceAll(filename, `"`, "")
	if name == "" {
		name = baseName(key)
	}
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(p.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", name)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

// PreviewURL presigns a GET that renders inline in the browser.
func (p *Presigner) PreviewURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(p.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object inline: %w", err)
	}
	return req.URL, nil
}

func baseName(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 && i+1 < len(key) {
		return key[i+1:]
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return "download"
	}
	return key
}

// ErrNotConfigured converts a nil-presigner check into the domain error the
// application layer expects.
var ErrNotConfigured = fmt.Errorf("object storage not configured: %w", domain.ErrUnavailable)
