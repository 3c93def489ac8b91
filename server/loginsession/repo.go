package loginsession

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Session is the server-side state behind one browser session cookie.
type Session struct {
	// Pending authorization round trip
	State        string
	CodeVerifier string

	// Set once the provider has issued a token
	AccessToken  string
	UserLoggedIn bool

	// Session management
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
	// SweepExpired removes every expired session and reports how many went.
	SweepExpired() (int, error)
}

// RunCleanup sweeps repo every interval until ctx is done. Sessions abandoned
// halfway through a login are never read again, so nothing else removes them.
func RunCleanup(ctx context.Context, repo Repo, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.SweepExpired()
			if err != nil {
				log.Err(err).Msg("Failed to sweep expired login sessions")
				continue
			}
			if removed > 0 {
				log.Debug().Int("removed", removed).Msg("Swept expired login sessions")
			}
		}
	}
}
