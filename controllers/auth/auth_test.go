package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	authService "healthcare-booking/services/auth"
	"healthcare-booking/services/notification"
	"healthcare-booking/services/security"
	"healthcare-booking/services/token"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountTable struct {
	mu   sync.Mutex
	rows map[uint]*account.Account
}

func (t *accountTable) get(id uint) (*account.Account, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	c := *row
	return &c, nil
}

func (t *accountTable) FindByID(_ context.Context, id uint) (*account.Account, error) {
	return t.get(id)
}

func (t *accountTable) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	t.mu.Lock()
	var id uint
	for _, row := range t.rows {
		if row.Email == account.NormalizeEmail(email) {
			id = row.ID
		}
	}
	t.mu.Unlock()
	return t.get(id)
}

func (t *accountTable) FindByResetToken(context.Context, string, time.Time) (*account.Account, error) {
	return nil, accounts.ErrNotFound
}

func (t *accountTable) FindByVerificationToken(context.Context, string, time.Time) (*account.Account, error) {
	return nil, accounts.ErrNotFound
}

func (t *accountTable) Create(context.Context, *account.Account) error {
	return errors.New("not supported")
}

func (t *accountTable) Update(_ context.Context, acct *account.Account, _ ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := *acct
	t.rows[acct.ID] = &c
	return nil
}

func (t *accountTable) ClearExpiredLock(_ context.Context, id uint, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row := t.rows[id]; row != nil && row.LockExpiredAt(now) {
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

func (t *accountTable) IncrementFailure(_ context.Context, id uint, now time.Time, threshold int, lockFor time.Duration) (security.FailureState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.rows[id]
	registerFailure(row, now, threshold, lockFor)
	return security.FailureState{FailedLoginAttempts: row.FailedLoginAttempts, LockedUntil: row.LockedUntil}, nil
}

func (t *accountTable) ResetFailures(_ context.Context, id uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id].ResetLockout()
	return nil
}

// plainHasher keeps the tests fast; bcrypt is covered by the service tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func newLoginApp(t *testing.T, rows ...*account.Account) *fiber.App {
	t.Helper()
	table := &accountTable{rows: make(map[uint]*account.Account)}
	for _, row := range rows {
		table.rows[row.ID] = row
	}
	svc := authService.NewService(table, security.NewGuard(table, 5, 30*time.Minute),
		token.NewManager("test-secret", time.Hour), plainHasher{}, notification.LogNotifier{})

	app := fiber.New()
	h := NewAuthController(svc, false)
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/logout", h.Logout)
	return app
}

func patient(id uint, email string) *account.Account {
	return &account.Account{
		ID:           id,
		Email:        email,
		PasswordHash: "plain:secret1",
		Role:         account.RolePatient,
		IsActive:     true,
	}
}

func postLogin(t *testing.T, app *fiber.App, body string) (*http.Response, types.ApiResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out types.ApiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestLoginSuccessSetsTokenAndCookie(t *testing.T) {
	app := newLoginApp(t, patient(1, "ana@example.com"))

	resp, body := postLogin(t, app, `{"email":"ANA@example.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body.Token)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "access=")
}

func TestLoginStatusCodes(t *testing.T) {
	suspended := patient(2, "sus@example.com")
	suspended.IsActive = false
	nearlyLocked := patient(3, "near@example.com")
	nearlyLocked.FailedLoginAttempts = 4
	until := time.Now().Add(20 * time.Minute)
	locked := patient(4, "locked@example.com")
	locked.FailedLoginAttempts = 5
	locked.LockedUntil = &until

	app := newLoginApp(t, patient(1, "ana@example.com"), suspended, nearlyLocked, locked)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing password", `{"email":"ana@example.com"}`, fiber.StatusBadRequest},
		{"unknown email", `{"email":"nobody@example.com","password":"secret1"}`, fiber.StatusUnauthorized},
		{"wrong password", `{"email":"ana@example.com","password":"nope"}`, fiber.StatusUnauthorized},
		{"suspended", `{"email":"sus@example.com","password":"secret1"}`, fiber.StatusUnauthorized},
		{"fifth failure locks", `{"email":"near@example.com","password":"nope"}`, fiber.StatusForbidden},
		{"locked with right password", `{"email":"locked@example.com","password":"secret1"}`, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postLogin(t, app, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.status, body.Status)
			assert.Empty(t, body.Token)
		})
	}
}

func TestLockedLoginReportsMinutes(t *testing.T) {
	until := time.Now().Add(20 * time.Minute)
	locked := patient(1, "locked@example.com")
	locked.FailedLoginAttempts = 5
	locked.LockedUntil = &until
	app := newLoginApp(t, locked)

	_, body := postLogin(t, app, `{"email":"locked@example.com","password":"secret1"}`)
	assert.Contains(t, body.Message, "20 minutes")
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newLoginApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "access=")
}
