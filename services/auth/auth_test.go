package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/notification"
	"healthcare-booking/services/security"
	"healthcare-booking/services/token"
	authTypes "healthcare-booking/types/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeAccounts backs both the account store and the lockout store.
type fakeAccounts struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*account.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: make(map[uint]*account.Account)}
}

func (f *fakeAccounts) copyOf(id uint) *account.Account {
	c := *f.rows[id]
	return &c
}

func (f *fakeAccounts) FindByID(_ context.Context, id uint) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return nil, accounts.ErrNotFound
	}
	return f.copyOf(id), nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.Email == account.NormalizeEmail(email) {
			return f.copyOf(id), nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (f *fakeAccounts) FindByResetToken(_ context.Context, hash string, now time.Time) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.ResetPasswordToken != nil && *row.ResetPasswordToken == hash && row.ResetPasswordExpire.After(now) {
			return f.copyOf(id), nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (f *fakeAccounts) FindByVerificationToken(_ context.Context, hash string, now time.Time) (*account.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.EmailVerificationToken != nil && *row.EmailVerificationToken == hash && row.EmailVerificationExpire.After(now) {
			return f.copyOf(id), nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (f *fakeAccounts) Create(_ context.Context, acct *account.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == acct.Email {
			return accounts.ErrEmailTaken
		}
	}
	f.nextID++
	acct.ID = f.nextID
	c := *acct
	f.rows[acct.ID] = &c
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, acct *account.Account, _ ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *acct
	f.rows[acct.ID] = &c
	return nil
}

func (f *fakeAccounts) ClearExpiredLock(_ context.Context, id uint, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row := f.rows[id]; row != nil && row.LockExpiredAt(now) {
		row.ClearLock()
	}
	return nil
}

// registerFailure applies the lockout rule of security.GormStore.IncrementFailure to an in-memory row.
func registerFailure(row *account.Account, now time.Time, threshold int, lockFor time.Duration) {
	row.FailedLoginAttempts++
	failedAt := now
	row.LastFailedLoginAt = &failedAt
	if row.FailedLoginAttempts >= threshold && !row.IsLockedAt(now) {
		lockUntil := now.Add(lockFor)
		row.LockedUntil = &lockUntil
	}
}

func (f *fakeAccounts) IncrementFailure(_ context.Context, id uint, now time.Time, threshold int, lockFor time.Duration) (security.FailureState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	registerFailure(row, now, threshold, lockFor)
	return security.FailureState{FailedLoginAttempts: row.FailedLoginAttempts, LockedUntil: row.LockedUntil}, nil
}

func (f *fakeAccounts) ResetFailures(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].ResetLockout()
	return nil
}

type capturingNotifier struct {
	sent []notification.Message
}

func (c *capturingNotifier) Notify(_ context.Context, msg notification.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

type fixture struct {
	svc      *Service
	store    *fakeAccounts
	notifier *capturingNotifier
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeAccounts()
	notifier := &capturingNotifier{}
	f := &fixture{store: store, notifier: notifier, clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	f.svc = NewService(store, security.NewGuard(store, 5, 30*time.Minute),
		token.NewManager("secret", time.Hour), BcryptHasher{Cost: bcrypt.MinCost}, notifier)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) seedPatient(t *testing.T, email, password string) *account.Account {
	t.Helper()
	hash, err := f.svc.hasher.Hash(password)
	require.NoError(t, err)
	p, err := account.NewPatientAccount(account.Base{Name: "Pat Doe", Email: email, Phone: "555", PasswordHash: hash}, account.PatientProfile{})
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), p.Account()))
	return p.Account()
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.seedPatient(t, "pat@example.com", "secret1")

	session, err := f.svc.Login(context.Background(), "PAT@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "pat@example.com", session.Account.Email)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_FifthFailureReportsLock(t *testing.T) {
	f := newFixture(t)
	acct := f.seedPatient(t, "pat@example.com", "secret1")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "pat@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	_, err := f.svc.Login(ctx, "pat@example.com", "wrong")
	require.ErrorIs(t, err, ErrAccountLocked)
	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, 30, locked.Minutes)

	stored := f.store.copyOf(acct.ID)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	assert.Equal(t, f.clock.Add(30*time.Minute), *stored.LockedUntil)

	// The correct password is refused while the lock holds.
	f.clock = f.clock.Add(10 * time.Minute)
	_, err = f.svc.Login(ctx, "pat@example.com", "secret1")
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, 20, locked.Minutes)
}

func TestLogin_ExpiredLockAllowsLoginAndResets(t *testing.T) {
	f := newFixture(t)
	acct := f.seedPatient(t, "pat@example.com", "secret1")
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "pat@example.com", "wrong")
	}

	f.clock = f.clock.Add(31 * time.Minute)
	_, err := f.svc.Login(ctx, "pat@example.com", "secret1")
	require.NoError(t, err)

	stored := f.store.copyOf(acct.ID)
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
	assert.Nil(t, stored.LastFailedLoginAt)
}

func TestLogin_SuspendedAccount(t *testing.T) {
	f := newFixture(t)
	acct := f.seedPatient(t, "pat@example.com", "secret1")
	acct.IsActive = false
	require.NoError(t, f.store.Update(context.Background(), acct, "is_active"))

	_, err := f.svc.Login(context.Background(), "pat@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestRegister_DoctorRequiresProfile(t *testing.T) {
	f := newFixture(t)
	req := authTypes.RegisterRequest{
		Name: "Dr Who", Email: "dr@example.com", Password: "secret1", Phone: "555",
		Role: "doctor", Specialization: "Cardiology", Hospital: "General", City: "Dhaka",
	}

	_, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, account.ErrInvalidProfile)

	req.Education = "MBBS"
	session, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, account.RoleDoctor, session.Account.Role)
	assert.True(t, session.Account.OfflineConsultation)
	assert.Zero(t, session.Account.FailedLoginAttempts)

	_, err = f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, accounts.ErrEmailTaken)
}

func TestRegister_QueuesVerificationAndVerifyEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, authTypes.RegisterRequest{
		Name: "Pat Doe", Email: "pat@example.com", Password: "secret1", Phone: "555",
	})
	require.NoError(t, err)
	assert.Equal(t, account.RolePatient, session.Account.Role)
	assert.False(t, session.Account.IsVerified)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypeEmailVerification, f.notifier.sent[0].Type)
	raw := f.notifier.sent[0].Data["token"]

	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "bogus"), ErrInvalidVerifyToken)
	require.NoError(t, f.svc.VerifyEmail(ctx, raw))
	assert.True(t, f.store.copyOf(session.Account.ID).IsVerified)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	acct := f.seedPatient(t, "pat@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "pat@example.com"))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypePasswordReset, f.notifier.sent[0].Type)
	raw := f.notifier.sent[0].Data["token"]
	require.NotEmpty(t, raw)

	stored := f.store.copyOf(acct.ID)
	assert.NotEqual(t, raw, *stored.ResetPasswordToken)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "not-the-token", "newpass1"), ErrInvalidResetToken)
	require.NoError(t, f.svc.ResetPassword(ctx, raw, "newpass1"))

	_, err := f.svc.Login(ctx, "pat@example.com", "newpass1")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, raw, "again123"), ErrInvalidResetToken)
}

func TestResetPassword_TokenExpiresAfterTenMinutes(t *testing.T) {
	f := newFixture(t)
	f.seedPatient(t, "pat@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "pat@example.com"))
	raw := f.notifier.sent[0].Data["token"]

	f.clock = f.clock.Add(11 * time.Minute)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, raw, "newpass1"), ErrInvalidResetToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	acct := f.seedPatient(t, "pat@example.com", "secret1")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, acct.ID, "nope", "newpass1"), ErrWrongPassword)
	require.NoError(t, f.svc.ChangePassword(ctx, acct.ID, "secret1", "newpass1"))

	_, err := f.svc.Login(ctx, "pat@example.com", "newpass1")
	assert.NoError(t, err)
}
