package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
)

const (
	sessionIDKey  = "sid"
	tableKey      = "table"
	adminTokenKey = "admin_token"

	// AdminTokenKey holds the checked admin token in the gin context
	AdminTokenKey = "admin_token"
)

// Sessions installs the signed cookie session store
func Sessions(cfg *config.Config) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		Secure:   cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(cfg.Session.Name, store)
}

// EnsureSessionID gives every browser a stable id. Carts and order
// snapshots are keyed by it.
func EnsureSessionID(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if id, ok := sess.Get(sessionIDKey).(string); ok && id != "" {
			c.Next()
			return
		}

		sess.Set(sessionIDKey, uuid.NewString())
		if err := sess.Save(); err != nil {
			log.WithError(err).Warn("Failed to save new session")
		}
		c.Next()
	}
}

// SessionID returns the browser session id
func SessionID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(sessionIDKey).(string)
	return id
}

// StoredTable returns the table identifier remembered for the session
func StoredTable(c *gin.Context) string {
	table, _ := sessions.Default(c).Get(tableKey).(string)
	return table
}

// StoreTable remembers the table identifier for the session
func StoreTable(c *gin.Context, table string) error {
	sess := sessions.Default(c)
	sess.Set(tableKey, table)
	return sess.Save()
}

// StoreAdminToken keeps the admin credential in the session
func StoreAdminToken(c *gin.Context, token string) error {
	sess := sessions.Default(c)
	sess.Set(adminTokenKey, token)
	return sess.Save()
}

// ClearAdminToken forgets the admin credential
func ClearAdminToken(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(adminTokenKey)
	return sess.Save()
}

// AdminToken returns the checked token set by RequireAdmin
func AdminToken(c *gin.Context) string {
	return c.GetString(AdminTokenKey)
}

// Unauthenticated answers 401 pointing at the login entry point
func Unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "Admin login required",
		"redirect": admin.LoginPath,
	})
}

// RequireAdmin lets requests through only with a stored, unexpired token.
// A token that has expired is dropped from the session.
func RequireAdmin(tokens admin.TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := sessions.Default(c).Get(adminTokenKey).(string)
		if err := tokens.Check(token); err != nil {
			if token != "" {
				_ = ClearAdminToken(c)
			}
			Unauthenticated(c)
			return
		}

		c.Set(AdminTokenKey, token)
		c.Next()
	}
}
