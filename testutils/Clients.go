package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/research-marketplace/account-deletion-service/client"
)

type ObjectStorage struct {
	mu        sync.Mutex
	objects   map[string]bool
	ListErr   error
	RemoveErr error
}

func NewObjectStorage(keys ...string) *ObjectStorage {
	s := &ObjectStorage{objects: make(map[string]bool)}
	for _, k := range keys {
		s.objects[k] = true
	}
	return s
}

func (s *ObjectStorage) ListUserFiles(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	keys := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *ObjectStorage) RemoveFiles(ctx context.Context, keys []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveErr != nil {
		return 0, s.RemoveErr
	}
	removed := 0
	for _, k := range keys {
		if s.objects[k] {
			delete(s.objects, k)
			removed++
		}
	}
	return removed, nil
}

func (s *ObjectStorage) Keys() []string {
	keys, _ := s.ListUserFiles(context.Background(), "")
	return keys
}

// IdentityProvider knows a set of usernames. Deleting an unknown one returns client.ErrIdentityNotFound.
type IdentityProvider struct {
	mu         sync.Mutex
	identities map[string]bool
	Err        error
	Calls      []string
}

func NewIdentityProvider(usernames ...string) *IdentityProvider {
	p := &IdentityProvider{identities: make(map[string]bool)}
	for _, u := range usernames {
		p.identities[u] = true
	}
	return p
}

func (p *IdentityProvider) DeleteIdentity(ctx context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, username)
	if p.Err != nil {
		return p.Err
	}
	if !p.identities[username] {
		return client.ErrIdentityNotFound
	}
	delete(p.identities, username)
	return nil
}

func (p *IdentityProvider) Has(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identities[username]
}
