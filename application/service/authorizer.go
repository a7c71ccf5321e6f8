package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/cache"
	"github.com/pagekeep/doclink/internal/domain"
	"github.com/pagekeep/doclink/internal/metrics"
)

// Cached decision values.
const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
)

// GrantParams configures granting a permission. Zero ObjectKind and
// ObjectID grant globally.
type GrantParams struct {
	UserID     int64
	Permission access.Permission
	ObjectKind access.TargetKind
	ObjectID   int64
}

// Authorizer answers access checks and manages access entries. Checks fail
// closed: inactive and anonymous principals are denied everything, and a
// check passes only for superusers or an explicit matching grant.
// Embeds Collection for Find/Get over entries; writes go through Grant and
// Revoke so the decision cache stays consistent.
type Authorizer struct {
	storage.Collection[access.Entry]
	entries access.EntryStore
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAuthorizer creates a new Authorizer service. Decisions derived from
// access entries are cached for the given TTL.
func NewAuthorizer(
	entries access.EntryStore,
	decisionCache cache.Cache,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Authorizer {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		Collection: storage.NewCollection[access.Entry](entries),
		entries:    entries,
		cache:      decisionCache,
		ttl:        ttl,
		metrics:    m,
		logger:     logger,
	}
}

// CheckAccess reports whether a principal holds a permission on a resource.
// A nil return means access is granted; every other outcome is
// ErrPermissionDenied. Superusers pass without touching the entry store;
// pass the zero Resource for checks not scoped to an object.
func (s *Authorizer) CheckAccess(
	ctx context.Context,
	user access.User,
	permission access.Permission,
	resource access.Resource,
) error {
	if !user.IsActive() {
		s.metrics.RecordAuthzCheck(false)
		return s.denied(permission, resource)
	}
	if user.IsSuperuser() {
		s.metrics.RecordAuthzCheck(true)
		return nil
	}

	key := decisionKey(user.ID(), permission, resource)
	if decision, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordAuthzCacheHit()
		s.metrics.RecordAuthzCheck(decision == decisionAllow)
		if decision == decisionAllow {
			return nil
		}
		return s.denied(permission, resource)
	}
	s.metrics.RecordAuthzCacheMiss()

	allowed, err := s.holdsGrant(ctx, user.ID(), permission, resource)
	if err != nil {
		return fmt.Errorf("find access entries: %w", err)
	}

	decision := decisionDeny
	if allowed {
		decision = decisionAllow
	}
	if err := s.cache.Set(ctx, key, decision, s.ttl); err != nil {
		s.logger.Warn("failed to cache access decision",
			slog.String("error", err.Error()),
		)
	}

	s.metrics.RecordAuthzCheck(allowed)
	if allowed {
		return nil
	}
	return s.denied(permission, resource)
}

// FilterAuthorized returns the subset of object IDs the principal holds the
// permission on. List endpoints use it to exclude unauthorized items
// instead of failing the whole request.
func (s *Authorizer) FilterAuthorized(
	ctx context.Context,
	user access.User,
	permission access.Permission,
	kind access.TargetKind,
	ids []int64,
) (mapset.Set[int64], error) {
	allowed := mapset.NewSet[int64]()
	if !user.IsActive() {
		return allowed, nil
	}
	if user.IsSuperuser() {
		allowed.Append(ids...)
		return allowed, nil
	}

	entries, err := s.entries.Find(ctx,
		access.WithUserID(user.ID()),
		access.WithPermission(permission),
	)
	if err != nil {
		return nil, fmt.Errorf("find access entries: %w", err)
	}

	requested := mapset.NewSet[int64](ids...)
	for _, entry := range entries {
		if entry.IsGlobal() {
			allowed.Append(ids...)
			return allowed, nil
		}
		if entry.ObjectKind() == kind && requested.Contains(entry.ObjectID()) {
			allowed.Add(entry.ObjectID())
		}
	}
	return allowed, nil
}

// Grant creates an access entry. Granting an already held permission
// returns the existing entry unchanged.
func (s *Authorizer) Grant(ctx context.Context, params GrantParams) (access.Entry, error) {
	entry, err := s.buildEntry(params)
	if err != nil {
		return access.Entry{}, err
	}

	existing, err := s.findExisting(ctx, entry)
	if err != nil {
		return access.Entry{}, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	saved, err := s.entries.Save(ctx, entry)
	if err != nil {
		return access.Entry{}, fmt.Errorf("save access entry: %w", err)
	}
	s.Invalidate(ctx)

	s.logger.Info("permission granted",
		slog.Int64("user_id", saved.UserID()),
		slog.String("permission", saved.Permission().String()),
		slog.String("object_kind", saved.ObjectKind().String()),
		slog.Int64("object_id", saved.ObjectID()),
	)

	return saved, nil
}

// Revoke removes an access entry.
func (s *Authorizer) Revoke(ctx context.Context, entryID int64) error {
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get access entry: %w", err)
	}

	if err := s.entries.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("delete access entry: %w", err)
	}
	s.Invalidate(ctx)

	s.logger.Info("permission revoked",
		slog.Int64("user_id", entry.UserID()),
		slog.String("permission", entry.Permission().String()),
	)

	return nil
}

// Invalidate drops every cached decision. Called after any mutation that
// can change check outcomes.
func (s *Authorizer) Invalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear decision cache",
			slog.String("error", err.Error()),
		)
	}
}

// CacheMetrics returns the decision cache statistics.
func (s *Authorizer) CacheMetrics() cache.Metrics {
	return s.cache.Metrics()
}

// --- internal decision helpers ---

func (s *Authorizer) holdsGrant(
	ctx context.Context,
	userID int64,
	permission access.Permission,
	resource access.Resource,
) (bool, error) {
	entries, err := s.entries.Find(ctx,
		access.WithUserID(userID),
		access.WithPermission(permission),
	)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Covers(resource) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Authorizer) denied(permission access.Permission, resource access.Resource) error {
	if resource.IsGlobal() {
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, permission)
	}
	return fmt.Errorf("%w: %s on %s %d",
		domain.ErrPermissionDenied, permission, resource.Kind(), resource.ID(),
	)
}

func (s *Authorizer) buildEntry(params GrantParams) (access.Entry, error) {
	if params.ObjectKind == "" && params.ObjectID == 0 {
		return access.NewGlobalEntry(params.UserID, params.Permission)
	}
	return access.NewEntry(params.UserID, params.Permission, params.ObjectKind, params.ObjectID)
}

func (s *Authorizer) findExisting(ctx context.Context, entry access.Entry) ([]access.Entry, error) {
	options := []storage.Option{
		access.WithUserID(entry.UserID()),
		access.WithPermission(entry.Permission()),
	}
	if entry.IsGlobal() {
		options = append(options, access.WithGlobalScope())
	} else {
		options = append(options, access.WithObject(entry.ObjectKind(), entry.ObjectID()))
	}
	existing, err := s.entries.Find(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("find existing entries: %w", err)
	}
	return existing, nil
}

func decisionKey(userID int64, permission access.Permission, resource access.Resource) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%s|%d",
		userID, permission, resource.Kind(), resource.ID(),
	))
	return "authz:" + hex.EncodeToString(sum[:])
}
