package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/cueroom/backend/internal/config"
	"github.com/cueroom/backend/internal/game"
	"github.com/cueroom/backend/internal/models"
)

// requireAdminPIN checks the X-Admin-Pin header against the configured
// bcrypt hash. An empty hash disables admin access entirely.
func requireAdminPIN(cfg *config.Config, c *gin.Context) bool {
	if cfg.AdminPINHash == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access not configured"})
		return false
	}
	pin := c.GetHeader("X-Admin-Pin")
	if pin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin pin required"})
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPINHash), []byte(pin)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid admin pin"})
		return false
	}
	return true
}

// AdminListTables lists every live table session.
func AdminListTables(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPIN(cfg, c) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": game.Manager.ListSessions()})
	}
}

// AdminSessionHistory lists recent persisted sessions, newest first.
func AdminSessionHistory(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPIN(cfg, c) {
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session history unavailable"})
			return
		}

		sessions := []models.TableSession{}
		err := db.Select(&sessions,
			`SELECT id, token, created_at, completed_at, shots_taken, balls_remaining
			 FROM table_sessions ORDER BY created_at DESC LIMIT 50`)
		if err != nil {
			log.Printf("[DB] failed to load session history: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"sessions": sessions})
	}
}

// AdminRemoveTable force-removes a table session.
func AdminRemoveTable(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPIN(cfg, c) {
			return
		}
		game.Manager.RemoveSession(c.Param("token"))
		c.JSON(http.StatusOK, gin.H{"removed": c.Param("token")})
	}
}
