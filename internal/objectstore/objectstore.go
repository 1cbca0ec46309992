// Package objectstore administers tenant storage: buckets through the S3
// API and users and canned policies through the MinIO admin API.
package objectstore

import "context"

// Admin is the object-storage administration surface the storage
// provisioner needs. Every call is keyed by plain string identifiers.
type Admin interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string) error
	RemoveBucket(ctx context.Context, bucket string) error

	AddCannedPolicy(ctx context.Context, name string, document []byte) error
	RemoveCannedPolicy(ctx context.Context, name string) error

	UserExists(ctx context.Context, accessKey string) (bool, error)
	AddUser(ctx context.Context, accessKey, secretKey string) error
	RemoveUser(ctx context.Context, accessKey string) error
	SetPolicy(ctx context.Context, accessKey, policyName string) error
}
