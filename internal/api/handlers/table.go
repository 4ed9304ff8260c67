package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cueroom/backend/internal/config"
	"github.com/cueroom/backend/internal/game"
	"github.com/cueroom/backend/internal/models"
	"github.com/cueroom/backend/internal/ws"
)

// CreateTable creates a new table session and returns its token plus a
// control token granting shoot/reset rights over the websocket.
func CreateTable(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := game.Manager.CreateSession(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create table"})
			return
		}

		controlToken, err := ws.NewControlToken(sess.Token, cfg.JWTSecret, 24*time.Hour)
		if err != nil {
			log.Printf("[API] failed to issue control token for %s: %v", sess.Token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue control token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":         sess.Token,
			"control_token": controlToken,
			"snapshot":      sess.Sim.Snapshot(),
		})
	}
}

// GetTable returns the current snapshot for a table.
func GetTable(c *gin.Context) {
	sess, err := game.Manager.GetSession(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      sess.Token,
		"shot_count": sess.ShotCount,
		"snapshot":   sess.Sim.Snapshot(),
	})
}

// GetTableShots returns the recorded shot history for a table.
func GetTableShots(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot history unavailable"})
			return
		}

		sess, err := game.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		if sess.SessionID == 0 {
			c.JSON(http.StatusOK, gin.H{"shots": []models.Shot{}})
			return
		}

		shots := []models.Shot{}
		err = db.Select(&shots,
			`SELECT id, session_id, shot_number, dx, dy, created_at FROM shots WHERE session_id = $1 ORDER BY shot_number`,
			sess.SessionID)
		if err != nil {
			log.Printf("[DB] failed to load shots for session %s: %v", sess.Token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load shots"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"shots": shots})
	}
}
