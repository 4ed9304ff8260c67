package models

import (
	"database/sql"
	"time"
)

// TableSession is a persisted table session record.
type TableSession struct {
	ID             int          `db:"id" json:"id"`
	Token          string       `db:"token" json:"token"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	CompletedAt    sql.NullTime `db:"completed_at" json:"completed_at,omitempty"`
	ShotsTaken     int          `db:"shots_taken" json:"shots_taken"`
	BallsRemaining int          `db:"balls_remaining" json:"balls_remaining"`
}

// Shot is one recorded shot event: the raw aim vector as received.
type Shot struct {
	ID         int       `db:"id" json:"id"`
	SessionID  int       `db:"session_id" json:"session_id"`
	ShotNumber int       `db:"shot_number" json:"shot_number"`
	DX         float64   `db:"dx" json:"dx"`
	DY         float64   `db:"dy" json:"dy"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
