package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagekeep/doclink/domain/access"
	"github.com/pagekeep/doclink/domain/storage"
	"github.com/pagekeep/doclink/internal/domain"
)

// Users manages accounts. Every request acts as a user; flipping the
// active or superuser flags takes effect on the next access check.
// Embeds Collection for Find/Get.
type Users struct {
	storage.Collection[access.User]
	users      access.UserStore
	authorizer *Authorizer
	logger     *slog.Logger
}

// NewUsers creates a new Users service. The authorizer's decision cache is
// invalidated whenever a user's flags change or an account is removed.
func NewUsers(users access.UserStore, authorizer *Authorizer, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{
		Collection: storage.NewCollection[access.User](users),
		users:      users,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Create adds an active, non-privileged user. Usernames are unique and the
// system username is reserved.
func (s *Users) Create(ctx context.Context, username string) (access.User, error) {
	u, err := access.NewUser(username)
	if err != nil {
		return access.User{}, err
	}
	if u.Username() == access.SystemUsername {
		return access.User{}, fmt.Errorf(
			"%w: username %q is reserved", domain.ErrValidation, access.SystemUsername,
		)
	}

	count, err := s.users.Count(ctx, access.WithUsername(u.Username()))
	if err != nil {
		return access.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return access.User{}, fmt.Errorf(
			"%w: user %q already exists", domain.ErrConflict, u.Username(),
		)
	}

	saved, err := s.users.Save(ctx, u)
	if err != nil {
		return access.User{}, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("user_id", saved.ID()),
		slog.String("username", saved.Username()),
	)

	return saved, nil
}

// ByUsername returns the user holding the given username.
func (s *Users) ByUsername(ctx context.Context, username string) (access.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// SetActive enables or disables an account. Disabling drops all cached
// access decisions so the account is locked out immediately.
func (s *Users) SetActive(ctx context.Context, id int64, active bool) (access.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return access.User{}, fmt.Errorf("get user: %w", err)
	}
	if u.IsActive() == active {
		return u, nil
	}

	saved, err := s.users.Save(ctx, u.WithActive(active))
	if err != nil {
		return access.User{}, fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("user active flag changed",
		slog.Int64("user_id", saved.ID()),
		slog.Bool("is_active", saved.IsActive()),
	)

	return saved, nil
}

// SetSuperuser grants or removes the superuser flag.
func (s *Users) SetSuperuser(ctx context.Context, id int64, superuser bool) (access.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return access.User{}, fmt.Errorf("get user: %w", err)
	}
	if u.IsSuperuser() == superuser {
		return u, nil
	}

	saved, err := s.users.Save(ctx, u.WithSuperuser(superuser))
	if err != nil {
		return access.User{}, fmt.Errorf("save user: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("user superuser flag changed",
		slog.Int64("user_id", saved.ID()),
		slog.Bool("is_superuser", saved.IsSuperuser()),
	)

	return saved, nil
}

// Delete removes a user together with their access entries.
func (s *Users) Delete(ctx context.Context, id int64) error {
	if _, err := s.users.Get(ctx, id); err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// EnsureAdmin returns the named account, creating it as an active superuser
// when absent and promoting it when it exists without the flag. Called once
// on startup so a fresh install always has a usable principal.
func (s *Users) EnsureAdmin(ctx context.Context, username string) (access.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.IsSuperuser() && existing.IsActive() {
			return existing, nil
		}
		return s.users.Save(ctx, existing.WithSuperuser(true).WithActive(true))
	case errors.Is(err, domain.ErrNotFound):
		u, err := access.NewUser(username)
		if err != nil {
			return access.User{}, err
		}
		saved, err := s.users.Save(ctx, u.WithSuperuser(true))
		if err != nil {
			return access.User{}, fmt.Errorf("save admin user: %w", err)
		}
		s.logger.Info("admin user created",
			slog.Int64("user_id", saved.ID()),
			slog.String("username", saved.Username()),
		)
		return saved, nil
	default:
		return access.User{}, fmt.Errorf("get admin user: %w", err)
	}
}

func (s *Users) invalidate(ctx context.Context) {
	if s.authorizer != nil {
		s.authorizer.Invalidate(ctx)
	}
}
