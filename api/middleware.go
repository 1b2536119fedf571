package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/edgestore/customerstore/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const TenantKey = "tenant"

// TenantHeader selects the tenant when bearer tokens are disabled.
const TenantHeader = "Customerstore-Tenant"

// Claims are the claims of a customerstore bearer token.
type Claims struct {
	Tenant string `json:"tenant"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 token for tenant that expires after ttl.
func NewToken(secret string, tenant string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Tenant: tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenant,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates token and returns the tenant it was issued for.
func ParseToken(secret string, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(err, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Tenant == "" {
		return "", errors.New("invalid token: missing tenant")
	}

	return claims.Tenant, nil
}

func NewTenantMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tenant := ctx.GetHeader(TenantHeader)

		if tenant != "" {
			ctx.Set(TenantKey, tenant)
			ctx.Next()
			return
		}

		server.Abort(ctx, http.StatusUnauthorized, "Invalid Tenant ID. Make sure to provide a valid Customerstore-Tenant header.")
	}
}

// NewJWTMiddleware takes the tenant from the bearer token of the request.
func NewJWTMiddleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
			server.Abort(ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}

		tenant, err := ParseToken(secret, header[7:])
		if err != nil {
			server.Abort(ctx, http.StatusUnauthorized, err.Error())
			return
		}

		ctx.Set(TenantKey, tenant)
		ctx.Next()
	}
}
