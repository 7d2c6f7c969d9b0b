package security

import (
	goctx "context"
	"fmt"
	"net/http"
	"time"

	"github.com/research-marketplace/account-deletion-service/crypto"
	"github.com/shaj13/go-guardian/v2/auth"
	"github.com/shaj13/libcache"
	"golang.org/x/crypto/bcrypt"
)

const (
	ApiKeyHeader     = "api-key"
	SystemUserId     = "system"
	validatedKeysTTL = 10 * time.Minute
)

// NewSystemApiKeyStrategy authenticates requests carrying the system api key. The key is checked
// against its bcrypt hash; successful checks are cached by key digest to skip bcrypt on repeat calls.
func NewSystemApiKeyStrategy(apiKeyHash []byte, cache libcache.Cache) auth.Strategy {
	return &systemApiKeyStrategyImpl{apiKeyHash: apiKeyHash, cache: cache}
}

type systemApiKeyStrategyImpl struct {
	apiKeyHash []byte
	cache      libcache.Cache
}

func (s systemApiKeyStrategyImpl) Authenticate(ctx goctx.Context, r *http.Request) (auth.Info, error) {
	apiKey := r.Header.Get(ApiKeyHeader)
	if apiKey == "" {
		return nil, fmt.Errorf("authentication failed: header '%v' is empty", ApiKeyHeader)
	}
	cacheKey := crypto.CreateSHA256Hash([]byte(apiKey))

	if v, ok := s.cache.Load(cacheKey); ok {
		info, ok := v.(auth.Info)
		if !ok {
			return nil, auth.NewTypeError("authentication failed:", (*auth.Info)(nil), v)
		}
		return info, nil
	}

	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(apiKey)); err != nil {
		return nil, fmt.Errorf("authentication failed: '%v' is invalid", ApiKeyHeader)
	}
	info := auth.NewDefaultUser(SystemUserId, SystemUserId, []string{}, auth.Extensions{})
	s.cache.StoreWithTTL(cacheKey, info, validatedKeysTTL)
	return info, nil
}
