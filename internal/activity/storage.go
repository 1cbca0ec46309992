package activity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/autosetup/internal/objectstore"
	"github.com/edvin/autosetup/internal/platform"
	"github.com/edvin/autosetup/internal/retry"
	"github.com/edvin/autosetup/internal/template"
)

// Storage contains the object-storage provisioning activities.
type Storage struct {
	admin    objectstore.Admin
	endpoint string
	logger   zerolog.Logger
}

// NewStorage creates a Storage activity struct. endpoint is the public
// storage URL handed to tenants.
func NewStorage(admin objectstore.Admin, endpoint string, logger zerolog.Logger) *Storage {
	return &Storage{
		admin:    admin,
		endpoint: endpoint,
		logger:   logger.With().Str("component", "storage-activity").Logger(),
	}
}

// CreateStorageMediaParams identifies the tenant whose storage is provisioned.
type CreateStorageMediaParams struct {
	TenantNamespace string
	OwnerIdentity   string
}

// StorageMedia is the provisioned bucket and the credential pair bound to it.
type StorageMedia struct {
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func errStorageDisabled() error {
	return retry.Precondition("object storage is not configured", nil)
}

// CreateStorageMedia provisions the tenant bucket, its access policy and a
// credential principal. It is safe to repeat: the bucket is created only
// when absent and the policy is recreated from scratch. When a principal
// for the owner already exists, an additional key pair is minted instead
// of touching the existing principal's secret.
func (a *Storage) CreateStorageMedia(ctx context.Context, params CreateStorageMediaParams) (*StorageMedia, error) {
	if a.admin == nil {
		return nil, errStorageDisabled()
	}
	bucket := params.TenantNamespace
	if bucket == "" || params.OwnerIdentity == "" {
		return nil, retry.Precondition("tenant namespace and owner identity are required", nil)
	}

	exists, err := a.admin.BucketExists(ctx, bucket)
	if err != nil {
		return nil, classify("check bucket", err)
	}
	if !exists {
		if err := a.admin.MakeBucket(ctx, bucket); err != nil {
			return nil, classify("create bucket", err)
		}
	}

	document, err := template.Render(template.StoragePolicy, map[string]string{"bucket": bucket})
	if err != nil {
		return nil, retry.Client("render storage policy", err)
	}
	policy := bucket
	if err := a.admin.RemoveCannedPolicy(ctx, policy); err != nil {
		return nil, classify("remove policy", err)
	}
	if err := a.admin.AddCannedPolicy(ctx, policy, document); err != nil {
		return nil, classify("add policy", err)
	}

	accessKey, secretKey, err := a.resolvePrincipal(ctx, params.OwnerIdentity)
	if err != nil {
		return nil, err
	}
	if err := a.admin.SetPolicy(ctx, accessKey, policy); err != nil {
		return nil, classify("set policy", err)
	}

	a.logger.Info().Str("bucket", bucket).Str("access_key", accessKey).Msg("storage media provisioned")
	return &StorageMedia{
		Bucket:    bucket,
		Endpoint:  a.endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

func (a *Storage) resolvePrincipal(ctx context.Context, owner string) (string, string, error) {
	exists, err := a.admin.UserExists(ctx, owner)
	if err != nil {
		return "", "", classify("look up principal", err)
	}

	accessKey := owner
	if exists {
		accessKey = platform.NewSecret(platform.AccessKeyLength)
	}
	secretKey := platform.NewSecret(platform.SecretKeyLength)
	if err := a.admin.AddUser(ctx, accessKey, secretKey); err != nil {
		return "", "", classify("add principal", err)
	}
	return accessKey, secretKey, nil
}

// RemoveStorageParams identifies what a teardown sub-step removes.
// AccessKey is the key recorded at creation and may be empty when creation
// did not finish; OwnerIdentity is the principal created for a new owner.
type RemoveStorageParams struct {
	TenantNamespace string
	AccessKey       string
	OwnerIdentity   string
}

// principals returns the distinct principals a teardown removes.
func (p RemoveStorageParams) principals() []string {
	var keys []string
	for _, k := range []string{p.AccessKey, p.OwnerIdentity} {
		if k != "" && (len(keys) == 0 || keys[0] != k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// RemoveStorageBucket deletes the tenant bucket and its contents.
func (a *Storage) RemoveStorageBucket(ctx context.Context, params RemoveStorageParams) error {
	if a.admin == nil {
		return errStorageDisabled()
	}
	if err := a.admin.RemoveBucket(ctx, params.TenantNamespace); err != nil {
		return classify("remove bucket", err)
	}
	return nil
}

// RemoveStorageUser deletes the tenant's credential principals: the
// recorded access key and the owner identity. A missing principal is not
// an error.
func (a *Storage) RemoveStorageUser(ctx context.Context, params RemoveStorageParams) error {
	if a.admin == nil {
		return errStorageDisabled()
	}
	keys := params.principals()
	if len(keys) == 0 {
		return retry.Precondition("no principal recorded for tenant", nil)
	}
	for _, key := range keys {
		if err := a.admin.RemoveUser(ctx, key); err != nil {
			return classify("remove principal", err)
		}
	}
	return nil
}

// RemoveStoragePolicy deletes the tenant's canned policy.
func (a *Storage) RemoveStoragePolicy(ctx context.Context, params RemoveStorageParams) error {
	if a.admin == nil {
		return errStorageDisabled()
	}
	if err := a.admin.RemoveCannedPolicy(ctx, params.TenantNamespace); err != nil {
		return classify("remove policy", err)
	}
	return nil
}
