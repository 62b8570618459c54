package admin

import (
	"context"
	"errors"
	"fmt"
	"math"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	adminTypes "healthcare-booking/types/admin"
	"healthcare-booking/utils"
)

var (
	ErrCannotSuspendAdmin = errors.New("admin accounts cannot be suspended")
	ErrAlreadySuspended   = errors.New("user is already suspended")
	ErrAlreadyActive      = errors.New("user is already active")
)

type Store interface {
	FindByID(ctx context.Context, id uint) (*account.Account, error)
	Update(ctx context.Context, acct *account.Account, columns ...string) error
	List(ctx context.Context, q adminTypes.UserQuery, offset, limit int) ([]account.Account, int64, error)
	Counts(ctx context.Context) (accounts.Counts, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type Page struct {
	Items []account.Account
	Total int64
	Page  int
	Limit int
}

func (s *Service) ListUsers(ctx context.Context, q adminTypes.UserQuery) (*Page, error) {
	page, limit := utils.NormalizePage(q.Page, q.Limit, 10, 100)
	rows, total, err := s.store.List(ctx, q, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*account.Account, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) Suspend(ctx context.Context, id uint, reason string) (*account.Account, error) {
	acct, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.IsAdmin() {
		return nil, ErrCannotSuspendAdmin
	}
	if !acct.IsActive {
		return nil, ErrAlreadySuspended
	}
	acct.IsActive = false
	if err := s.store.Update(ctx, acct, "is_active"); err != nil {
		return nil, err
	}
	logger.Warning(fmt.Sprintf("Account %d suspended: %s", acct.ID, reason))
	return acct, nil
}

// Reactivate restores a suspended account and clears any login lockout.
func (s *Service) Reactivate(ctx context.Context, id uint) (*account.Account, error) {
	acct, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.IsActive {
		return nil, ErrAlreadyActive
	}
	acct.IsActive = true
	acct.ResetLockout()
	if err := s.store.Update(ctx, acct, append([]string{"is_active"}, account.LockoutColumns...)...); err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Account %d reactivated", acct.ID))
	return acct, nil
}

func (s *Service) Stats(ctx context.Context) (*adminTypes.StatsResponse, error) {
	c, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	suspended := c.Total - c.Active
	rate := 0.0
	if c.Total > 0 {
		rate = math.Round(float64(suspended)/float64(c.Total)*100*100) / 100
	}
	return &adminTypes.StatsResponse{
		TotalUsers:     c.Total,
		ActiveUsers:    c.Active,
		SuspendedUsers: suspended,
		ActiveDoctors:  c.ActiveDoctors,
		ActivePatients: c.ActivePatients,
		SuspensionRate: rate,
	}, nil
}
