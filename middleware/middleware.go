package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clinicore/clinicore/config"
	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Context keys used by the middleware chain.
const (
	ctxKeyDB     = "db"
	ctxKeyUserID = "user_id"
	ctxKeyRoleID = "role_id"
)

// CORSMiddleware configures CORS headers for incoming requests. The request
// origin is echoed back because browsers reject a wildcard origin when
// credentials are allowed; credentialless requests keep the wildcard.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Vary", "Origin")
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the shared gorm DB handle into the request
// context so handlers stay free of package-level singletons.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyDB, db)
		c.Next()
	}
}

// GetDB retrieves the gorm DB handle set by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, exists := c.Get(ctxKeyDB)
	if !exists {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ctxKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role ID from the request context.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, exists := c.Get(ctxKeyRoleID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}

// ValidateLoginToken authenticates requests via the session-token header.
// Redis is consulted first when available; the sessions table is the source
// of truth.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := c.GetHeader("session-token")
		if sessionToken == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token not provided",
				Err: fmt.Errorf("session token not provided"),
			})
			c.Abort()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
			c.Abort()
			return
		}

		if exists, checked := util.SessionExists(sessionToken); checked && !exists {
			// Redis answered authoritatively: the token was never stored or
			// has already been revoked.
			rejectSession(c, fmt.Errorf("session not found"))
			return
		}

		var session model.Session
		err := db.Where("session_token = ? AND expires_at > ?", sessionToken, time.Now()).First(&session).Error
		if err == gorm.ErrRecordNotFound {
			rejectSession(c, fmt.Errorf("session not found or expired"))
			return
		}
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate session", Err: err})
			c.Abort()
			return
		}

		var user model.User
		if err := db.First(&user, session.UserID).Error; err != nil {
			rejectSession(c, fmt.Errorf("session user not found"))
			return
		}

		util.UserEmailCacheSet(user.ID, user.Email)
		c.Set(ctxKeyUserID, user.ID)
		c.Set(ctxKeyRoleID, user.RoleID)
		c.Next()
	}
}

func rejectSession(c *gin.Context, err error) {
	util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired session", Err: err})
	c.Abort()
}

// pingRedis is used by the health endpoint to report Redis availability.
func pingRedis(rdb *redis.Client) bool {
	if rdb == nil {
		return false
	}
	return rdb.Ping(context.Background()).Err() == nil
}

// HealthHandler reports process liveness plus store connectivity.
func HealthHandler(c *gin.Context) {
	db := GetDB(c)
	dbOK := false
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			dbOK = sqlDB.Ping() == nil
		}
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "ok",
		Data: map[string]interface{}{
			"database": dbOK,
			"redis":    pingRedis(config.GetRedisClient()),
			"geoip":    util.GeoIPCacheStats(),
		},
	})
}
