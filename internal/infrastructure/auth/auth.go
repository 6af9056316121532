package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/heavybid/auction-media/internal/config"
)

// Validator validates bearer JWTs against a remote JWKS. When auth is
// disabled it passes every request through.
type Validator struct {
	cfg    *config.Config
	log    zerolog.Logger
	jwks   *keyfunc.JWKS
	issuer string
}

// NewValidator fetches the JWKS when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	validator := &Validator{
		cfg:    cfg,
		log:    log.With().Str("component", "auth").Logger(),
		issuer: cfg.AuthIssuer,
	}
	if !cfg.AuthEnabled {
		return validator, nil
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: 5 * time.Minute,
		RefreshErrorHandler: func(err error) {
			validator.log.Warn().Err(err).Msg("jwks refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	validator.jwks = jwks
	return validator, nil
}

// Middleware enforces bearer-token auth when enabled.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.cfg.AuthEnabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
			jwt.WithIssuer(v.issuer),
			jwt.WithValidMethods([]string{"RS256", "ES256"}),
		)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("jwt validation failed")
			abortUnauthorized(c, "invalid token")
			return
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set("user_id", sub)
		}
		c.Set("auth_token", token)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
