package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-booking/models/account"
	adminTypes "healthcare-booking/types/admin"
	doctorTypes "healthcare-booking/types/doctor"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("user already exists with this email")
)

// GormStore reads and writes the accounts table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*account.Account, error) {
	var acct account.Account
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	var acct account.Account
	if err := s.db.WithContext(ctx).Where("email = ?", account.NormalizeEmail(email)).First(&acct).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// FindByResetToken finds the account holding an unexpired reset token hash.
func (s *GormStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*account.Account, error) {
	var acct account.Account
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", tokenHash, now).
		First(&acct).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// FindByVerificationToken finds the account holding an unexpired email verification token hash.
func (s *GormStore) FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*account.Account, error) {
	var acct account.Account
	err := s.db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_expire > ?", tokenHash, now).
		First(&acct).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// Create inserts a new account, assigning its public uuid.
func (s *GormStore) Create(ctx context.Context, acct *account.Account) error {
	if acct.Uuid == "" {
		acct.Uuid = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update writes the named columns of acct (and updated_at); every other column keeps its stored value.
func (s *GormStore) Update(ctx context.Context, acct *account.Account, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	result := s.db.WithContext(ctx).Model(acct).Select(columns).Updates(acct)
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

// SearchDoctors lists active, verified doctors matching the directory filters.
func (s *GormStore) SearchDoctors(ctx context.Context, q doctorTypes.SearchQuery, offset, limit int) ([]account.Account, int64, error) {
	tx := s.db.WithContext(ctx).Model(&account.Account{}).
		Where("role = ? AND is_active = ? AND is_verified = ?", account.RoleDoctor, true, true)

	if q.Search != "" {
		p := likePattern(q.Search)
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(specialization) LIKE ? OR LOWER(hospital) LIKE ? OR LOWER(city) LIKE ?)", p, p, p, p)
	}
	if q.Specialization != "" {
		tx = tx.Where("LOWER(specialization) LIKE ?", likePattern(q.Specialization))
	}
	if q.City != "" {
		tx = tx.Where("LOWER(city) LIKE ?", likePattern(q.City))
	}
	if q.Hospital != "" {
		tx = tx.Where("LOWER(hospital) LIKE ?", likePattern(q.Hospital))
	}
	if q.MinFee != nil {
		tx = tx.Where("consultation_fee >= ?", *q.MinFee)
	}
	if q.MaxFee != nil {
		tx = tx.Where("consultation_fee <= ?", *q.MaxFee)
	}
	if q.Online != nil {
		tx = tx.Where("online_consultation = ?", *q.Online)
	}
	if q.Offline != nil {
		tx = tx.Where("offline_consultation = ?", *q.Offline)
	}
	if q.Rating != nil {
		tx = tx.Where("rating >= ?", *q.Rating)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	var doctors []account.Account
	if err := tx.Order(q.OrderClause()).Offset(offset).Limit(limit).Find(&doctors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

// List returns accounts for the admin console, newest first.
func (s *GormStore) List(ctx context.Context, q adminTypes.UserQuery, offset, limit int) ([]account.Account, int64, error) {
	tx := s.db.WithContext(ctx).Model(&account.Account{})
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", p, p)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	var rows []account.Account
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	return rows, total, nil
}

// Counts holds the account totals shown on the admin dashboard.
type Counts struct {
	Total          int64
	Active         int64
	ActiveDoctors  int64
	ActivePatients int64
}

func (s *GormStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.WithContext(ctx).Model(&account.Account{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE is_active AND role = ?) AS active_doctors,
			COUNT(*) FILTER (WHERE is_active AND role = ?) AS active_patients`,
			account.RoleDoctor, account.RolePatient).
		Scan(&c).Error
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count accounts: %w", err)
	}
	return c, nil
}

// UpdateRating stores a doctor's recomputed review aggregate.
func (s *GormStore) UpdateRating(ctx context.Context, doctorID uint, rating float64, total int) error {
	return s.db.WithContext(ctx).Model(&account.Account{}).
		Where("id = ?", doctorID).
		Updates(map[string]interface{}{"rating": rating, "total_reviews": total}).Error
}
