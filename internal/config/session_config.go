package config

import "time"

type SessionConfig interface {
	GetSessionName() string
	GetMaxSessionAge() time.Duration
	// GetSessionStorePath names the BBolt file sessions are kept in. Empty
	// keeps them in memory.
	GetSessionStorePath() string
	GetSessionCleanupInterval() time.Duration
}

type Session struct {
	Name            string        `env:"SESSION_NAME" envDefault:"gitlab_viewer_session"`
	MaxAge          time.Duration `env:"SESSION_MAX_AGE" envDefault:"30m"`
	StorePath       string        `env:"SESSION_STORE_PATH"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
}

var _ SessionConfig = Session{}

func (s Session) GetSessionName() string {
	return s.Name
}

func (s Session) GetMaxSessionAge() time.Duration {
	return s.MaxAge
}

func (s Session) GetSessionStorePath() string {
	return s.StorePath
}

func (s Session) GetSessionCleanupInterval() time.Duration {
	if s.CleanupInterval <= 0 {
		return 5 * time.Minute
	}
	return s.CleanupInterval
}
