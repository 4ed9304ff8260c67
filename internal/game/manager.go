package game

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cueroom/backend/internal/config"
)

// Manager is the process-wide session manager, set by InitializeManager.
var Manager *SessionManager

// Broadcaster pushes an event to every client watching a table. The
// websocket hub implements it; the manager stays transport-agnostic.
type Broadcaster interface {
	BroadcastToTable(token string, message interface{})
}

// TableSession is one live table: a simulation plus its bookkeeping.
type TableSession struct {
	Token        string
	Sim          *Simulation
	SessionID    int // table_sessions row id, 0 when DB is absent
	ShotCount    int
	CreatedAt    time.Time
	LastActivity time.Time
	cancel       context.CancelFunc
}

// SessionManager owns all live table sessions and their persistence.
// db and rdb may be nil; every persistence path is guarded so the
// simulator runs standalone.
type SessionManager struct {
	sessions map[string]*TableSession // keyed by table token
	db       *sqlx.DB
	rdb      *goredis.Client
	config   *config.Config
	hub      Broadcaster
	mu       sync.RWMutex
}

// InitializeManager creates the global session manager.
func InitializeManager(db *sqlx.DB, rdb *goredis.Client, cfg *config.Config) {
	Manager = &SessionManager{
		sessions: make(map[string]*TableSession),
		db:       db,
		rdb:      rdb,
		config:   cfg,
	}
	log.Printf("[MANAGER] session manager initialized (db=%v, redis=%v)", db != nil, rdb != nil)
}

// SetBroadcaster wires the websocket hub in after both sides exist.
func (sm *SessionManager) SetBroadcaster(b Broadcaster) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hub = b
}

// CreateSession racks a fresh table, persists its row, and starts the
// tick loop.
func (sm *SessionManager) CreateSession(ctx context.Context) (*TableSession, error) {
	token := "TBL_" + generateToken(10)
	now := time.Now()
	sess := &TableSession{
		Token:        token,
		Sim:          NewSimulation(),
		CreatedAt:    now,
		LastActivity: now,
	}

	if sm.db != nil {
		var id int
		err := sm.db.Get(&id,
			`INSERT INTO table_sessions (token, created_at) VALUES ($1, $2) RETURNING id`,
			token, now)
		if err != nil {
			log.Printf("[DB] failed to insert session %s: %v", token, err)
		} else {
			sess.SessionID = id
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel

	sm.mu.Lock()
	sm.sessions[token] = sess
	sm.mu.Unlock()

	go sm.runSession(runCtx, sess)

	sm.saveToRedis(sess)
	log.Printf("[MANAGER] session %s created", token)
	return sess, nil
}

// GetSession finds a live session by token, falling back to a Redis
// rehydrate for sessions this process has not seen.
func (sm *SessionManager) GetSession(token string) (*TableSession, error) {
	sm.mu.RLock()
	sess, ok := sm.sessions[token]
	sm.mu.RUnlock()
	if ok {
		return sess, nil
	}

	sess = sm.loadFromRedis(token)
	if sess == nil {
		return nil, errors.New("session not found")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if existing, ok := sm.sessions[token]; ok {
		return existing, nil
	}
	sm.sessions[token] = sess
	runCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go sm.runSession(runCtx, sess)
	log.Printf("[MANAGER] session %s rehydrated from redis", token)
	return sess, nil
}

// ListSessions returns a summary of every live session (admin use).
func (sm *SessionManager) ListSessions() []map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]map[string]interface{}, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		out = append(out, map[string]interface{}{
			"token":         sess.Token,
			"state":         sess.Sim.State(),
			"active_balls":  sess.Sim.ActiveBalls(),
			"shot_count":    sess.ShotCount,
			"created_at":    sess.CreatedAt,
			"last_activity": sess.LastActivity,
		})
	}
	return out
}

// RemoveSession stops a session's tick loop and drops it.
func (sm *SessionManager) RemoveSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sess, ok := sm.sessions[token]
	if !ok {
		return
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	delete(sm.sessions, token)
	log.Printf("[MANAGER] session %s removed", token)
}

// TakeShot applies a shot event to a session's cue ball. Shots that the
// state machine rejects (mid-simulation, game over, cue ball pocketed)
// are reported back but are not errors.
func (sm *SessionManager) TakeShot(token string, dx, dy float64) (bool, error) {
	sess, err := sm.GetSession(token)
	if err != nil {
		return false, err
	}

	if !sess.Sim.Shoot(dx, dy) {
		return false, nil
	}

	sm.mu.Lock()
	sess.ShotCount++
	sess.LastActivity = time.Now()
	shotNumber := sess.ShotCount
	sm.mu.Unlock()

	sm.recordShot(sess, shotNumber, dx, dy)
	sm.saveToRedis(sess)
	sm.broadcast(token, map[string]interface{}{
		"type":        "shot_taken",
		"shot_number": shotNumber,
	})
	log.Printf("[SIM] session %s shot #%d (dx=%.1f dy=%.1f)", token, shotNumber, dx, dy)
	return true, nil
}

// ResetTable re-racks a session from any state.
func (sm *SessionManager) ResetTable(token string) error {
	sess, err := sm.GetSession(token)
	if err != nil {
		return err
	}

	sess.Sim.Reset()

	sm.mu.Lock()
	sess.LastActivity = time.Now()
	sm.mu.Unlock()

	sm.saveToRedis(sess)
	sm.broadcast(token, map[string]interface{}{
		"type":     "table_reset",
		"snapshot": sess.Sim.Snapshot(),
	})
	return nil
}

// runSession drives one session's simulation at the configured tick
// rate. Ticks are no-ops outside the simulating state, so the loop is
// cheap while a table sits idle.
func (sm *SessionManager) runSession(ctx context.Context, sess *TableSession) {
	rate := 60
	if sm.config != nil && sm.config.TickRate > 0 {
		rate = sm.config.TickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := sess.Sim.State()
			if !sess.Sim.Tick() {
				continue
			}
			after := sess.Sim.State()

			sm.broadcast(sess.Token, map[string]interface{}{
				"type":     "frame",
				"snapshot": sess.Sim.Snapshot(),
			})

			if before == after {
				continue
			}
			switch after {
			case StateAiming:
				sm.saveToRedis(sess)
				sm.broadcast(sess.Token, map[string]interface{}{"type": "settled"})
			case StateOver:
				sm.saveToRedis(sess)
				sm.saveFinalResult(sess)
				sm.broadcast(sess.Token, map[string]interface{}{"type": "game_over"})
			}
		}
	}
}

// StartIdleSweep expires sessions with no activity past the configured
// idle window.
func (sm *SessionManager) StartIdleSweep(ctx context.Context) {
	idle := 30 * time.Minute
	if sm.config != nil && sm.config.SessionIdleMinutes > 0 {
		idle = time.Duration(sm.config.SessionIdleMinutes) * time.Minute
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-idle)
				sm.mu.RLock()
				var stale []string
				for token, sess := range sm.sessions {
					if sess.LastActivity.Before(cutoff) {
						stale = append(stale, token)
					}
				}
				sm.mu.RUnlock()
				for _, token := range stale {
					log.Printf("[MANAGER] session %s idle, expiring", token)
					sm.RemoveSession(token)
				}
			}
		}
	}()
}

func (sm *SessionManager) broadcast(token string, message interface{}) {
	sm.mu.RLock()
	hub := sm.hub
	sm.mu.RUnlock()
	if hub != nil {
		hub.BroadcastToTable(token, message)
	}
}

func (sm *SessionManager) recordShot(sess *TableSession, shotNumber int, dx, dy float64) {
	if sm.db == nil || sess.SessionID == 0 {
		return
	}
	_, err := sm.db.Exec(
		`INSERT INTO shots (session_id, shot_number, dx, dy, created_at) VALUES ($1,$2,$3,$4,NOW())`,
		sess.SessionID, shotNumber, dx, dy)
	if err != nil {
		log.Printf("[DB] failed to record shot #%d for session %s: %v", shotNumber, sess.Token, err)
	}
}

func (sm *SessionManager) saveFinalResult(sess *TableSession) {
	if sm.db == nil || sess.SessionID == 0 {
		return
	}
	sm.mu.RLock()
	shots, sessionID := sess.ShotCount, sess.SessionID
	sm.mu.RUnlock()
	_, err := sm.db.Exec(
		`UPDATE table_sessions SET completed_at = NOW(), shots_taken = $1, balls_remaining = $2 WHERE id = $3`,
		shots, sess.Sim.ActiveBalls(), sessionID)
	if err != nil {
		log.Printf("[DB] failed to save final result for session %s: %v", sess.Token, err)
	}
}

// redisSessionState is the Redis persistence shape for one session.
type redisSessionState struct {
	Token     string    `json:"token"`
	SessionID int       `json:"session_id"`
	ShotCount int       `json:"shot_count"`
	Snapshot  Snapshot  `json:"snapshot"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (sm *SessionManager) saveToRedis(sess *TableSession) {
	if sm.rdb == nil {
		return
	}
	sm.mu.RLock()
	state := redisSessionState{
		Token:     sess.Token,
		SessionID: sess.SessionID,
		ShotCount: sess.ShotCount,
		UpdatedAt: time.Now(),
	}
	sm.mu.RUnlock()
	state.Snapshot = sess.Sim.Snapshot()
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("[REDIS] failed to marshal session %s: %v", sess.Token, err)
		return
	}
	key := "table:" + sess.Token + ":state"
	if err := sm.rdb.SetEx(context.Background(), key, data, time.Hour).Err(); err != nil {
		log.Printf("[REDIS] failed to save session %s: %v", sess.Token, err)
	}
}

func (sm *SessionManager) loadFromRedis(token string) *TableSession {
	if sm.rdb == nil {
		return nil
	}
	key := "table:" + token + ":state"
	data, err := sm.rdb.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil
	}
	var state redisSessionState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("[REDIS] failed to unmarshal session %s: %v", token, err)
		return nil
	}

	sim := NewSimulation()
	sim.Restore(state.Snapshot)
	return &TableSession{
		Token:        state.Token,
		Sim:          sim,
		SessionID:    state.SessionID,
		ShotCount:    state.ShotCount,
		CreatedAt:    state.UpdatedAt,
		LastActivity: time.Now(),
	}
}

// generateToken returns a random alphanumeric token of the given length.
func generateToken(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}
