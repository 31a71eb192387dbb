package middleware

import (
	"net/http"
	"time"

	"franchise-crm/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextKeyPrincipal stores the authenticated models.Principal.
const ContextKeyPrincipal = "auth_principal"

// Claims is the JWT payload. Subject carries the user ID.
type Claims struct {
	FranchiseID string `json:"franchise_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates an HS256 Bearer token and stores the caller as a
// models.Principal under ContextKeyPrincipal. Failures answer 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*Claims); ok {
				c.Set(ContextKeyPrincipal, models.Principal{
					UserID:      claims.Subject,
					FranchiseID: claims.FranchiseID,
					Role:        claims.Role,
				})
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			msg := "invalid or expired token"
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				msg = "missing authorization header"
			}
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: msg})
		},
	})
}

// RequireRole rejects callers whose role is not in allowed. Must run after JWTAuth.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	roleSet := make(map[string]bool, len(allowed))
	for _, r := range allowed {
		roleSet[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
			}
			if !roleSet[p.Role] {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller stored by JWTAuth.
func PrincipalFrom(c echo.Context) (models.Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(models.Principal)
	return p, ok
}

// IssueToken signs an HS256 token for p valid for ttl from now.
func IssueToken(secret string, p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		FranchiseID: p.FranchiseID,
		Role:        p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
