package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/cueroom/backend/internal/config"
	"github.com/cueroom/backend/internal/game"
)

// ShootData is the aim vector for a shot: the vector from the cue ball
// to the pointer. The simulation inverts and scales it.
type ShootData struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// GameHub is the single hub for all tables.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// HandleWebSocket upgrades a connection for one table. A valid control
// token (ct query param) grants shoot/reset rights; without one the
// client is a read-only spectator.
func HandleWebSocket(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableToken := c.Param("token")
		if tableToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "table token required"})
			return
		}

		sess, err := game.Manager.GetSession(tableToken)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}

		control := false
		if ct := c.Query("ct"); ct != "" {
			if err := ValidateControlToken(ct, tableToken, cfg.JWTSecret); err != nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid control token"})
				return
			}
			control = true
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:       conn,
			tableToken: tableToken,
			control:    control,
			send:       make(chan []byte, 256),
		}

		// Queue the current state before the client is registered, so a
		// joining client sees it immediately and nothing can close the
		// send channel while this goroutine still writes to it.
		client.sendJSON(map[string]interface{}{
			"type":     "snapshot",
			"snapshot": sess.Sim.Snapshot(),
			"control":  control,
		})

		GameHub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads and dispatches client events.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error for table %s: %v", c.tableToken, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}

		switch msg.Type {
		case "shoot":
			if !c.control {
				c.sendError("spectators cannot shoot")
				continue
			}
			var data ShootData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError("invalid shoot data")
				continue
			}
			taken, err := game.Manager.TakeShot(c.tableToken, data.DX, data.DY)
			if err != nil {
				c.sendError(err.Error())
				continue
			}
			if !taken {
				// Not an error: shots while simulating, after game over,
				// or with the cue ball down are normal client behavior.
				c.sendJSON(map[string]interface{}{"type": "shot_ignored"})
			}

		case "reset":
			if !c.control {
				c.sendError("spectators cannot reset")
				continue
			}
			if err := game.Manager.ResetTable(c.tableToken); err != nil {
				c.sendError(err.Error())
			}

		case "snapshot":
			sess, err := game.Manager.GetSession(c.tableToken)
			if err != nil {
				c.sendError(err.Error())
				continue
			}
			c.sendJSON(map[string]interface{}{
				"type":     "snapshot",
				"snapshot": sess.Sim.Snapshot(),
			})

		default:
			c.sendError("unknown message type")
		}
	}
}

// NewControlToken issues an HS256 control token for a table.
func NewControlToken(tableToken, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"table": tableToken,
		"exp":   jwt.NewNumericDate(time.Now().Add(ttl)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateControlToken checks an HS256 control token against a table.
func ValidateControlToken(tokenString, tableToken, secret string) error {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return fmt.Errorf("invalid token claims")
	}
	if claims["table"] != tableToken {
		return fmt.Errorf("token is for a different table")
	}
	return nil
}
