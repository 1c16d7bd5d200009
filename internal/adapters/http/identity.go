package http

import (
	"net/http"
	"strings"

	"github.com/dkeye/Parley/internal/adapters/auth"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	identityKey = "identity"
	guestKey    = "guest_id"
)

// IdentityMiddleware resolves the caller from a bearer token. Without a
// token, and when guests are allowed, the caller gets a guest id kept in the
// session cookie.
func IdentityMiddleware(resolver *auth.JWTResolver, allowGuests bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := auth.TokenFromRequest(c.Request); token != "" && resolver != nil {
			id, err := resolver.Resolve(token)
			if err != nil {
				log.Debug().Err(err).Str("module", "adapters.http").Msg("token rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(identityKey, id)
			c.Next()
			return
		}

		if !allowGuests {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session := sessions.Default(c)
		guest, _ := session.Get(guestKey).(string)
		if guest == "" {
			guest = "guest-" + uuid.NewString()
			session.Set(guestKey, guest)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save guest session")
			}
		}
		id, err := domain.NewIdentity(guest, guestName(guest))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid guest session"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// guestName is a short display name derived from the guest id.
func guestName(guest string) string {
	suffix := strings.TrimPrefix(guest, "guest-")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "Guest " + suffix
}

func identityFrom(c *gin.Context) domain.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(domain.Identity)
	return id
}
