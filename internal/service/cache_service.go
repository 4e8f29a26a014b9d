package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/goroutine"
)

// CacheService — in-memory кэш с TTL для редко меняющихся справочников:
// список категорий и каталог исполнителей по категории.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewCacheService создаёт кэш и запускает фоновую очистку протухших записей.
func NewCacheService() *CacheService {
	cs := &CacheService{
		cache: make(map[string]*cacheEntry),
	}
	goroutine.SafeGo(cs.cleanup)
	return cs
}

// Get возвращает значение по ключу, если оно ещё не протухло.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		// Протухшую запись уберёт фоновая очистка.
		return nil, false
	}
	return entry.data, true
}

// Set сохраняет значение с TTL.
func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete удаляет ключ.
func (cs *CacheService) Delete(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
}

// InvalidateByPrefix удаляет все ключи с данным префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(cs.cache, key)
		}
	}
}

// InvalidateCatalog сбрасывает каталог исполнителей: профиль изменился.
func (cs *CacheService) InvalidateCatalog() {
	cs.InvalidateByPrefix("catalog:")
}

// cleanup периодически убирает протухшие записи.
func (cs *CacheService) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cs.mu.Lock()
		now := time.Now()
		for key, entry := range cs.cache {
			if now.After(entry.expiresAt) {
				delete(cs.cache, key)
			}
		}
		cs.mu.Unlock()
	}
}

// Ключи кэша.

func CategoriesCacheKey() string {
	return "categories:all"
}

func CatalogCacheKey(categoryID uuid.UUID, limit int) string {
	return "catalog:" + categoryID.String() + ":" + strconv.Itoa(limit)
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
func (cs *CacheService) GetOrSet(key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	if value, found := cs.Get(key); found {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	cs.Set(key, value, ttl)
	return value, nil
}
