package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gearplanner/internal/remote"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID  = "user_id"
	localSubject = "subject"
	localToken   = "token"
)

// Claims are the parts of the identity provider's access token the BFF reads.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Middleware requires a bearer token and picks the session it belongs to.
// With a secret the token is HS256-verified and the session is the token's
// subject. Without one the claims cannot be trusted, so the session is keyed
// on the token itself: a made-up subject only ever reaches an empty store and
// the gear API rejects the token on the first call.
// The token is forwarded on the request's user context for remote calls.
func Middleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" && isWebSocketUpgrade(c) {
			token = c.Query("access_token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "User token not found.")
		}

		claims, err := parseClaims(token, secretBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if claims.Subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token has no subject")
		}

		sessionKey := claims.Subject
		if len(secretBytes) == 0 {
			sessionKey = tokenSessionKey(token)
		}

		c.Locals(localUserID, sessionKey)
		c.Locals(localSubject, claims.Subject)
		c.Locals(localToken, token)
		c.SetUserContext(remote.WithToken(c.UserContext(), token))
		return c.Next()
	}
}

func tokenSessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:])
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

func parseClaims(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		claims := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, err
		}
		if claims.ExpiresAt != nil && !claims.ExpiresAt.After(time.Now()) {
			return nil, jwt.ErrTokenExpired
		}
		return claims, nil
	}

	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

// UserID returns the session key set by Middleware, or "" outside it.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// Subject is the token's sub claim, verified only when a secret is set.
func Subject(c *fiber.Ctx) string {
	sub, _ := c.Locals(localSubject).(string)
	return sub
}

// Browsers cannot set headers on a websocket handshake.
func isWebSocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
