package middleware

import (
	"context"
	"errors"
	"strings"

	"healthcare-booking/logger"
	"healthcare-booking/models/account"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/token"
	"healthcare-booking/types"

	"github.com/gofiber/fiber/v2"
)

// AccessCookie is the cookie the session token is also accepted from.
const AccessCookie = "access"

const (
	localAccount   = "account"
	localAccountID = "accountID"
)

// AccountLoader resolves the account a token was issued to.
type AccountLoader interface {
	FindByID(ctx context.Context, id uint) (*account.Account, error)
}

// Session authenticates requests carrying a token issued by token.Manager.
type Session struct {
	tokens   *token.Manager
	accounts AccountLoader
}

func NewSession(tokens *token.Manager, accounts AccountLoader) *Session {
	return &Session{tokens: tokens, accounts: accounts}
}

var (
	errMalformedHeader = errors.New("invalid authorization header format")
	errMissingToken    = errors.New("authorization token missing")
)

// extractToken reads "Authorization: Bearer <token>" and falls back to the access cookie.
func extractToken(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errMalformedHeader
		}
		return parts[1], nil
	}
	if cookie := c.Cookies(AccessCookie); cookie != "" {
		return cookie, nil
	}
	return "", errMissingToken
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}

func (s *Session) resolve(c *fiber.Ctx, raw string) (*account.Account, int, string) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, fiber.StatusUnauthorized, "Not authorized, token failed"
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, fiber.StatusUnauthorized, "Not authorized, token failed"
	}
	acct, err := s.accounts.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, fiber.StatusUnauthorized, "Not authorized, account no longer exists"
		}
		logger.Error("Failed to load session account", err)
		return nil, fiber.StatusInternalServerError, "Internal server error"
	}
	if !acct.IsActive {
		return nil, fiber.StatusUnauthorized, "Account has been suspended"
	}
	return acct, 0, ""
}

// Authenticate rejects the request unless it carries a valid token of an active account.
func (s *Session) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractToken(c)
		if err != nil {
			return unauthorized(c, "Not authorized, "+err.Error())
		}
		acct, status, message := s.resolve(c, raw)
		if acct == nil {
			return c.Status(status).JSON(types.ApiResponse{Message: message, Status: status})
		}
		setAccount(c, acct)
		return c.Next()
	}
}

// Optional attaches the account when a valid token is present and never rejects.
func (s *Session) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractToken(c)
		if err != nil {
			return c.Next()
		}
		if acct, _, _ := s.resolve(c, raw); acct != nil {
			setAccount(c, acct)
		}
		return c.Next()
	}
}

func setAccount(c *fiber.Ctx, acct *account.Account) {
	c.Locals(localAccount, acct)
	c.Locals(localAccountID, acct.ID)
}

// CurrentAccount returns the authenticated account, or nil on an anonymous request.
func CurrentAccount(c *fiber.Ctx) *account.Account {
	acct, _ := c.Locals(localAccount).(*account.Account)
	return acct
}

// CurrentAccountID returns the authenticated account id, or nil.
func CurrentAccountID(c *fiber.Ctx) *uint {
	id, ok := c.Locals(localAccountID).(uint)
	if !ok {
		return nil
	}
	return &id
}
