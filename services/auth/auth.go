package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/notification"
	"healthcare-booking/services/security"
	"healthcare-booking/services/token"
	authTypes "healthcare-booking/types/auth"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountSuspended   = errors.New("account has been suspended")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidVerifyToken = errors.New("invalid or expired verification token")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// LockedError carries the minutes left on a lock and matches ErrAccountLocked.
type LockedError struct {
	Minutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked due to too many failed login attempts, try again in %d minutes", e.Minutes)
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

const (
	resetTokenTTL        = 10 * time.Minute
	verificationTokenTTL = 24 * time.Hour
)

type AccountStore interface {
	FindByID(ctx context.Context, id uint) (*account.Account, error)
	FindByEmail(ctx context.Context, email string) (*account.Account, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*account.Account, error)
	FindByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*account.Account, error)
	Create(ctx context.Context, acct *account.Account) error
	Update(ctx context.Context, acct *account.Account, columns ...string) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher hashes passwords with bcrypt at the given cost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = 12
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Session is an issued token with the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *account.Account
}

type Service struct {
	accounts AccountStore
	guard    *security.Guard
	tokens   *token.Manager
	hasher   Hasher
	notifier notification.Notifier
	now      func() time.Time
}

func NewService(store AccountStore, guard *security.Guard, tokens *token.Manager, hasher Hasher, notifier notification.Notifier) *Service {
	return &Service{
		accounts: store,
		guard:    guard,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		now:      time.Now,
	}
}

// Login checks the lock before the password, and reports a lock triggered by this very attempt.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	locked, err := s.guard.IsLocked(ctx, acct, now)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, &LockedError{Minutes: s.guard.RemainingLockMinutes(acct, now)}
	}

	if !acct.IsActive {
		return nil, ErrAccountSuspended
	}

	if err := s.hasher.Compare(acct.PasswordHash, password); err != nil {
		if err := s.guard.RecordFailure(ctx, acct, now); err != nil {
			return nil, err
		}
		if acct.IsLockedAt(now) {
			logger.Warning(fmt.Sprintf("Account %d locked after %d failed login attempts", acct.ID, acct.FailedLoginAttempts))
			return nil, &LockedError{Minutes: s.guard.RemainingLockMinutes(acct, now)}
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.guard.RecordSuccess(ctx, acct); err != nil {
		return nil, err
	}
	return s.issue(acct)
}

// Register builds the role's account variant, so an incomplete doctor profile is rejected before storage.
func (s *Service) Register(ctx context.Context, req authTypes.RegisterRequest) (*Session, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	base := account.Base{Name: req.Name, Email: req.Email, Phone: req.Phone, PasswordHash: hash}

	var row *account.Account
	switch account.Role(req.RoleOrDefault()) {
	case account.RoleDoctor:
		doctor, err := account.NewDoctorAccount(base, req.DoctorProfile())
		if err != nil {
			return nil, err
		}
		row = doctor.Account()
	default:
		dob, err := req.BirthDate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", account.ErrInvalidProfile, err)
		}
		patient, err := account.NewPatientAccount(base, account.PatientProfile{
			DateOfBirth:      dob,
			Gender:           req.Gender,
			EmergencyContact: req.EmergencyContact,
		})
		if err != nil {
			return nil, err
		}
		row = patient.Account()
	}
	row.Address = req.Address

	raw, err := newRawToken()
	if err != nil {
		return nil, err
	}
	hashed := hashToken(raw)
	expires := s.now().Add(verificationTokenTTL)
	row.EmailVerificationToken = &hashed
	row.EmailVerificationExpire = &expires

	if err := s.accounts.Create(ctx, row); err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("Registered %s account %d", row.Role, row.ID))
	s.notify(ctx, row, notification.TypeEmailVerification, raw, expires)
	return s.issue(row)
}

// VerifyEmail marks the account holding the token as verified.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	acct, err := s.accounts.FindByVerificationToken(ctx, hashToken(strings.TrimSpace(rawToken)), s.now())
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrInvalidVerifyToken
		}
		return err
	}
	acct.IsVerified = true
	acct.EmailVerificationToken = nil
	acct.EmailVerificationExpire = nil
	return s.accounts.Update(ctx, acct, "is_verified", "email_verification_token", "email_verification_expire")
}

func (s *Service) Me(ctx context.Context, id uint) (*account.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newRawToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// notify queues a raw token for delivery; failures only get logged.
func (s *Service) notify(ctx context.Context, acct *account.Account, kind, raw string, expires time.Time) {
	err := s.notifier.Notify(ctx, notification.Message{
		Type:      kind,
		AccountID: acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		Data:      map[string]string{"token": raw, "expires_at": expires.UTC().Format(time.RFC3339)},
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to queue %s notification", kind), err)
	}
}

// ForgotPassword stores a hashed, short-lived reset token and queues the raw token for delivery.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, err := newRawToken()
	if err != nil {
		return err
	}
	hashed := hashToken(raw)
	expires := s.now().Add(resetTokenTTL)
	acct.ResetPasswordToken = &hashed
	acct.ResetPasswordExpire = &expires

	if err := s.accounts.Update(ctx, acct, "reset_password_token", "reset_password_expire"); err != nil {
		return err
	}
	s.notify(ctx, acct, notification.TypePasswordReset, raw, expires)
	return nil
}

// ResetPassword replaces the password when the token matches an unexpired reset request.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) error {
	acct, err := s.accounts.FindByResetToken(ctx, hashToken(strings.TrimSpace(rawToken)), s.now())
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	acct.ResetPasswordToken = nil
	acct.ResetPasswordExpire = nil
	acct.ResetLockout()
	columns := append([]string{"password_hash", "reset_password_token", "reset_password_expire"}, account.LockoutColumns...)
	return s.accounts.Update(ctx, acct, columns...)
}

func (s *Service) ChangePassword(ctx context.Context, id uint, current, next string) error {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(acct.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	acct.PasswordHash = hash
	return s.accounts.Update(ctx, acct, "password_hash")
}

// VerifyPassword checks a password for an already authenticated account.
func (s *Service) VerifyPassword(acct *account.Account, password string) error {
	if err := s.hasher.Compare(acct.PasswordHash, password); err != nil {
		return ErrWrongPassword
	}
	return nil
}

func (s *Service) issue(acct *account.Account) (*Session, error) {
	signed, expiresAt, err := s.tokens.Issue(acct.ID, string(acct.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, Account: acct}, nil
}
