package db

import (
	"log/slog"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache keys are tracked per entity so that every entry of one kind can be
// dropped at once, e.g. when a category write invalidates the list view.
var (
	Cache             *ristretto.Cache[string, any]
	CategoryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() error {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return err
	}
	slog.Info("Cache initialized", "component", "cache")
	return nil
}

func GetCategoryCache(cacheKey string) (any, bool) {
	if Cache == nil {
		return nil, false
	}
	return Cache.Get(cacheKey)
}

func SetCategoryCache(cacheKey string, value any) {
	if Cache == nil {
		return
	}
	CategoryCacheKeys.Lock()
	CategoryCacheKeys.m[cacheKey] = struct{}{}
	CategoryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
	Cache.Wait()
}

func ClearAllCategoryCaches() {
	if Cache == nil {
		return
	}
	CategoryCacheKeys.Lock()
	for key := range CategoryCacheKeys.m {
		Cache.Del(key)
	}
	CategoryCacheKeys.m = make(map[string]struct{})
	CategoryCacheKeys.Unlock()
}

// ClearCache drops every tracked entry of the named kind.
func ClearCache(name string) bool {
	switch name {
	case "categories":
		ClearAllCategoryCaches()
		return true
	default:
		return false
	}
}
