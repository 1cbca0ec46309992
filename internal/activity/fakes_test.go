package activity

import (
	"context"
	"errors"
	"sync"

	"github.com/edvin/autosetup/internal/helm"
)

// memoryAdmin is an in-memory objectstore.Admin. failOn makes the named
// method fail with the given error.
type memoryAdmin struct {
	mu       sync.Mutex
	buckets  map[string]int
	policies map[string][]byte
	users    map[string]string
	bindings map[string]string
	calls    []string
	failOn   map[string]error
}

func newMemoryAdmin() *memoryAdmin {
	return &memoryAdmin{
		buckets:  map[string]int{},
		policies: map[string][]byte{},
		users:    map[string]string{},
		bindings: map[string]string{},
		failOn:   map[string]error{},
	}
}

func (m *memoryAdmin) record(call string) error {
	m.calls = append(m.calls, call)
	return m.failOn[call]
}

func (m *memoryAdmin) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("BucketExists"); err != nil {
		return false, err
	}
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *memoryAdmin) MakeBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("MakeBucket"); err != nil {
		return err
	}
	if _, ok := m.buckets[bucket]; ok {
		return errors.New("bucket already exists")
	}
	m.buckets[bucket] = 1
	return nil
}

func (m *memoryAdmin) RemoveBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveBucket"); err != nil {
		return err
	}
	delete(m.buckets, bucket)
	return nil
}

func (m *memoryAdmin) AddCannedPolicy(_ context.Context, name string, document []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddCannedPolicy"); err != nil {
		return err
	}
	if _, ok := m.policies[name]; ok {
		return errors.New("policy exists")
	}
	m.policies[name] = document
	return nil
}

func (m *memoryAdmin) RemoveCannedPolicy(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveCannedPolicy"); err != nil {
		return err
	}
	delete(m.policies, name)
	return nil
}

func (m *memoryAdmin) UserExists(_ context.Context, accessKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UserExists"); err != nil {
		return false, err
	}
	_, ok := m.users[accessKey]
	return ok, nil
}

func (m *memoryAdmin) AddUser(_ context.Context, accessKey, secretKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AddUser"); err != nil {
		return err
	}
	m.users[accessKey] = secretKey
	return nil
}

func (m *memoryAdmin) RemoveUser(_ context.Context, accessKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveUser"); err != nil {
		return err
	}
	delete(m.users, accessKey)
	return nil
}

func (m *memoryAdmin) SetPolicy(_ context.Context, accessKey, policyName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetPolicy"); err != nil {
		return err
	}
	m.bindings[accessKey] = policyName
	return nil
}

// packageCall is one recorded call against recordingManager.
type packageCall struct {
	Op       string
	Category helm.Category
	Name     string
	Params   map[string]string
}

// recordingManager is a helm.Manager that records calls.
type recordingManager struct {
	calls []packageCall
	err   error
}

func (r *recordingManager) CreatePackage(_ context.Context, category helm.Category, name string, params map[string]string) error {
	r.calls = append(r.calls, packageCall{"create", category, name, params})
	return r.err
}

func (r *recordingManager) UpdatePackage(_ context.Context, category helm.Category, name string, params map[string]string) error {
	r.calls = append(r.calls, packageCall{"update", category, name, params})
	return r.err
}

func (r *recordingManager) DeletePackage(_ context.Context, category helm.Category, name string, params map[string]string) error {
	r.calls = append(r.calls, packageCall{"delete", category, name, params})
	return r.err
}
