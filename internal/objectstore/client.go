package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/madmin-go/v3"
	"github.com/rs/zerolog"
)

// MinIO admin error codes treated as "already gone".
const (
	codeNoSuchUser   = "XMinioAdminNoSuchUser"
	codeNoSuchPolicy = "XMinioAdminNoSuchPolicy"
)

// Config holds the admin endpoint and credentials.
type Config struct {
	Endpoint  string // host:port, no scheme
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Client implements Admin against a MinIO deployment.
type Client struct {
	s3     *s3.Client
	admin  *madmin.AdminClient
	logger zerolog.Logger
}

var _ Admin = (*Client)(nil)

// NewClient creates a Client for cfg.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("object storage endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	scheme := "http://"
	if cfg.UseSSL {
		scheme = "https://"
	}
	s3Client := s3.New(s3.Options{
		BaseEndpoint: aws.String(scheme + cfg.Endpoint),
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	adminClient, err := madmin.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio admin client: %w", err)
	}

	return newClient(s3Client, adminClient, logger), nil
}

func newClient(s3Client *s3.Client, adminClient *madmin.AdminClient, logger zerolog.Logger) *Client {
	return &Client{
		s3:     s3Client,
		admin:  adminClient,
		logger: logger.With().Str("component", "objectstore").Logger(),
	}
}

// BucketExists reports whether bucket exists and is reachable.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head bucket %s: %w", bucket, err)
	}
	return true, nil
}

// MakeBucket creates bucket. A bucket we already own is not an error.
func (c *Client) MakeBucket(ctx context.Context, bucket string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil && !isAlreadyOwned(err) {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	c.logger.Info().Str("bucket", bucket).Msg("bucket ready")
	return nil
}

// RemoveBucket empties and deletes bucket. A missing bucket is not an error.
func (c *Client) RemoveBucket(ctx context.Context, bucket string) error {
	pager := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("list objects in %s: %w", bucket, err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return fmt.Errorf("empty bucket %s: %w", bucket, err)
		}
	}

	_, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete bucket %s: %w", bucket, err)
	}
	c.logger.Info().Str("bucket", bucket).Msg("bucket removed")
	return nil
}

// AddCannedPolicy creates or replaces the named policy.
func (c *Client) AddCannedPolicy(ctx context.Context, name string, document []byte) error {
	if err := c.admin.AddCannedPolicy(ctx, name, document); err != nil {
		return fmt.Errorf("add policy %s: %w", name, err)
	}
	return nil
}

// RemoveCannedPolicy deletes the named policy. A missing policy is not an error.
func (c *Client) RemoveCannedPolicy(ctx context.Context, name string) error {
	if err := c.admin.RemoveCannedPolicy(ctx, name); err != nil && !hasAdminCode(err, codeNoSuchPolicy) {
		return fmt.Errorf("remove policy %s: %w", name, err)
	}
	return nil
}

// UserExists reports whether a user with accessKey exists.
func (c *Client) UserExists(ctx context.Context, accessKey string) (bool, error) {
	if _, err := c.admin.GetUserInfo(ctx, accessKey); err != nil {
		if hasAdminCode(err, codeNoSuchUser) {
			return false, nil
		}
		return false, fmt.Errorf("get user %s: %w", accessKey, err)
	}
	return true, nil
}

// AddUser creates a user with the given key pair.
func (c *Client) AddUser(ctx context.Context, accessKey, secretKey string) error {
	if err := c.admin.AddUser(ctx, accessKey, secretKey); err != nil {
		return fmt.Errorf("add user %s: %w", accessKey, err)
	}
	return nil
}

// RemoveUser deletes a user. A missing user is not an error.
func (c *Client) RemoveUser(ctx context.Context, accessKey string) error {
	if err := c.admin.RemoveUser(ctx, accessKey); err != nil && !hasAdminCode(err, codeNoSuchUser) {
		return fmt.Errorf("remove user %s: %w", accessKey, err)
	}
	return nil
}

// SetPolicy binds policyName to the user.
func (c *Client) SetPolicy(ctx context.Context, accessKey, policyName string) error {
	if err := c.admin.SetPolicy(ctx, policyName, accessKey, false); err != nil {
		return fmt.Errorf("set policy %s on %s: %w", policyName, accessKey, err)
	}
	return nil
}

func hasAdminCode(err error, code string) bool {
	return madmin.ToErrorResponse(err).Code == code
}

func isAlreadyOwned(err error) bool {
	var owned *s3types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}

func isNotFound(err error) bool {
	var nsb *s3types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || strings.HasPrefix(code, "404")
	}
	return false
}
