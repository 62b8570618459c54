package seeders

import (
	"context"
	"errors"
	"fmt"

	"healthcare-booking/config"
	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
)

// AccountStore is the part of the account store the seeders use.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	Create(ctx context.Context, acct *account.Account) error
}

// PasswordHasher hashes the seeded admin password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// SeedAdmin creates the administrator from ADMIN_* settings unless an account with that email exists.
func SeedAdmin(ctx context.Context, store AccountStore, hasher PasswordHasher, cfg *config.Config) error {
	logger.Info("🔍 Checking administrator account...")
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Warning("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	existing, err := store.FindByEmail(ctx, cfg.AdminEmail)
	switch {
	case err == nil:
		logger.Info(fmt.Sprintf("✅ Account %s already exists with role %s. No seeding needed.", existing.Email, existing.Role))
		return nil
	case !errors.Is(err, accounts.ErrNotFound):
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin, err := account.NewAdminAccount(account.Base{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Phone:        cfg.AdminPhone,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	if err := store.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	logger.Success(fmt.Sprintf("🎉 Administrator %s created", admin.Email))
	return nil
}
