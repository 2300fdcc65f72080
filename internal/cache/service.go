package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/autoscout/internal/config"
)

// Cache key namespaces used by the orchestrator.
const (
	NamespaceEvidence = "evidence"
	NamespaceSearch   = "search"
	NamespaceResearch = "research"
)

// Service derives deterministic cache keys from request parameters and
// wraps a Store with per-namespace TTLs and a global enable flag.
//
// Caching is an optimization, never a correctness dependency: backend
// errors are logged and reported as a miss or a dropped write.
type Service struct {
	store   Store
	cfg     config.CacheConfig
	enabled bool
}

// NewService wraps the given store.
func NewService(store Store, cfg config.CacheConfig) *Service {
	return &Service{store: store, cfg: cfg, enabled: cfg.Enabled}
}

// DeriveKey builds a stable key from a namespace and request parameters.
// Values are normalized (lowercased, whitespace collapsed) and keys are
// serialized in sorted order, so equal parameters always hash equal
// regardless of map iteration order or incidental whitespace. The digest
// keeps the key free of raw user input.
func (s *Service) DeriveKey(namespace string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	norm := make(map[string]string, len(params))
	for _, k := range keys {
		norm[k] = strings.Join(strings.Fields(strings.ToLower(params[k])), " ")
	}

	// encoding/json writes map keys in sorted order, which makes the
	// serialization canonical.
	payload, _ := json.Marshal(norm)
	digest := sha256.Sum256(payload)
	return namespace + ":" + hex.EncodeToString(digest[:])[:16]
}

// TTL returns the default TTL for a namespace.
func (s *Service) TTL(namespace string) time.Duration {
	switch namespace {
	case NamespaceEvidence:
		return s.cfg.EvidenceTTL()
	case NamespaceSearch:
		return s.cfg.SearchTTL()
	case NamespaceResearch:
		return s.cfg.ResearchTTL()
	default:
		return time.Hour
	}
}

// Get looks up the cached value for the given namespace and parameters.
func (s *Service) Get(ctx context.Context, namespace string, params map[string]string) ([]byte, bool) {
	if !s.enabled {
		return nil, false
	}
	key := s.DeriveKey(namespace, params)
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache: read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return val, ok
}

// Set writes through to the active backend. A zero ttl selects the
// namespace default.
func (s *Service) Set(ctx context.Context, namespace string, params map[string]string, value []byte, ttl time.Duration) {
	if !s.enabled {
		return
	}
	if ttl <= 0 {
		ttl = s.TTL(namespace)
	}
	key := s.DeriveKey(namespace, params)
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		zap.L().Warn("cache: write failed, dropping",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Invalidate removes one entry immediately.
func (s *Service) Invalidate(ctx context.Context, namespace string, params map[string]string) error {
	return s.store.Delete(ctx, s.DeriveKey(namespace, params))
}

// InvalidateNamespace removes every entry under a namespace.
func (s *Service) InvalidateNamespace(ctx context.Context, namespace string) error {
	return s.store.DeletePrefix(ctx, namespace+":")
}

// BackendName identifies the active backend for health reporting,
// including whether the service is enabled at all.
func (s *Service) BackendName() string {
	if !s.enabled {
		return "disabled"
	}
	return s.store.Name()
}
