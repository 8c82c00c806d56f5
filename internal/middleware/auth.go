package middleware

import (
	"context"
	"errors"
	"strings"

	"dishswap/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token issuer and audience shared by token issuing and verification.
const (
	TokenIssuer   = "dishswap-api"
	TokenAudience = "dishswap-client"
)

const (
	msgNoToken      = "Unauthorized: No token provided"
	msgInvalidToken = "Forbidden: Invalid token"
)

var (
	errNoToken      = errors.New("no bearer token")
	errInvalidToken = errors.New("invalid token")
)

// Identity is the decoded caller attached to authenticated requests.
type Identity struct {
	ID    string
	Email string
}

// TokenVerifier validates HS256 tokens issued by the API.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier returns a verifier for tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses tokenString and returns the identity it carries.
func (v *TokenVerifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return v.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Identity{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, errInvalidToken
	}
	email, _ := claims["email"].(string)

	return Identity{ID: sub, Email: email}, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errNoToken
	}
	return parts[1], nil
}

func attachIdentity(c *fiber.Ctx, id Identity) {
	c.Locals("userID", id.ID)
	c.Locals("userEmail", id.Email)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, id.ID))
}

// AuthRequired enforces a valid bearer token. A missing or malformed header is a 401,
// a token that fails verification is a 403.
func AuthRequired(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msgNoToken))
		}

		id, err := v.Verify(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError(msgInvalidToken))
		}

		attachIdentity(c, id)
		return c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is present and never rejects the request.
func OptionalAuth(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw, err := bearerToken(c); err == nil {
			if id, err := v.Verify(raw); err == nil {
				attachIdentity(c, id)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

// UserEmail returns the authenticated user email, or "".
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("userEmail").(string)
	return email
}
