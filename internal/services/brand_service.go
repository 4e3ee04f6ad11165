// Package services provides brand profile lookups for StudioShell.
package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

const (
	brandSummaryCacheKey = "brand_summary"
	brandProfileCacheKey = "brand_profile"
	brandCacheTTL        = 5 * time.Minute
)

// BrandProfile is the seller's brand context as the backend reports it.
type BrandProfile struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	Voice   string `json:"voice"`
}

// BrandService performs bearer-authenticated brand lookups with a short TTL
// cache, so the status line can show brand context without hammering the
// backend. Unauthenticated sessions get an empty profile and no call.
type BrandService struct {
	initialized bool
	ctx         studiotypes.Context
	store       *cache.Cache

	// api is resolved from the registry; tests may set it directly.
	api *APIClientService
}

// NewBrandService creates a new BrandService instance.
func NewBrandService() *BrandService {
	return &BrandService{}
}

// Name returns the service name "brand" for registration.
func (b *BrandService) Name() string {
	return "brand"
}

// Initialize sets up the BrandService for operation.
func (b *BrandService) Initialize(ctx studiotypes.Context) error {
	b.ctx = ctx
	b.store = cache.New(brandCacheTTL, 2*brandCacheTTL)
	b.initialized = true
	return nil
}

// Profile fetches the full brand profile. Read-only posture without a token.
func (b *BrandService) Profile() (BrandProfile, error) {
	if !b.initialized {
		return BrandProfile{}, fmt.Errorf("brand service not initialized")
	}
	if _, ok := b.ctx.AuthToken(); !ok {
		return BrandProfile{}, nil
	}

	if cached, found := b.store.Get(brandProfileCacheKey); found {
		return cached.(BrandProfile), nil
	}

	api, err := b.apiClient()
	if err != nil {
		return BrandProfile{}, err
	}

	result, err := api.GetJSON("/mystuff/brand")
	if err != nil {
		return BrandProfile{}, err
	}

	brand := result.Field("data.brand")
	profile := BrandProfile{
		Name:    brand.Get("name").String(),
		Tagline: brand.Get("tagline").String(),
		Voice:   brand.Get("voice").String(),
	}
	b.store.Set(brandProfileCacheKey, profile, cache.DefaultExpiration)
	return profile, nil
}

// Summary fetches the one-line brand summary, cached for the TTL.
func (b *BrandService) Summary() (string, error) {
	if !b.initialized {
		return "", fmt.Errorf("brand service not initialized")
	}
	if _, ok := b.ctx.AuthToken(); !ok {
		return "", nil
	}

	if cached, found := b.store.Get(brandSummaryCacheKey); found {
		return cached.(string), nil
	}

	api, err := b.apiClient()
	if err != nil {
		return "", err
	}

	result, err := api.GetJSON("/mystuff/brand/summary")
	if err != nil {
		return "", err
	}

	summary := result.Field("data.summary").String()
	b.store.Set(brandSummaryCacheKey, summary, cache.DefaultExpiration)
	logger.Debug("Brand summary refreshed")
	return summary, nil
}

// Invalidate drops cached brand lookups, forcing the next call to refetch.
func (b *BrandService) Invalidate() {
	if b.store != nil {
		b.store.Flush()
	}
}

func (b *BrandService) apiClient() (*APIClientService, error) {
	if b.api != nil {
		return b.api, nil
	}
	svc, err := GetGlobalRegistry().GetService("api_client")
	if err != nil {
		return nil, err
	}
	api, ok := svc.(*APIClientService)
	if !ok {
		return nil, ErrEndpointUnavailable
	}
	return api, nil
}
