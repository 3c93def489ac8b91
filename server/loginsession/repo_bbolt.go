package loginsession

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/gitlab-activity-viewer/internal/errors"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("login_sessions")

// BoltLoginSessionRepo keeps login sessions in a BBolt file so they survive
// a restart. Tokens are stored as issued.
type BoltLoginSessionRepo struct {
	db  *bbolt.DB
	now func() time.Time
}

var _ Repo = (*BoltLoginSessionRepo)(nil)

// NewBoltLoginSessionRepo returns a Repo backed by the given BBolt database.
func NewBoltLoginSessionRepo(db *bbolt.DB) (*BoltLoginSessionRepo, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}
	return &BoltLoginSessionRepo{db: db, now: time.Now}, nil
}

// NewBoltLoginSessionRepoFromFile opens a BBolt database at path.
func NewBoltLoginSessionRepoFromFile(path string, options *bbolt.Options) (*BoltLoginSessionRepo, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	repo, err := NewBoltLoginSessionRepo(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying BBolt database.
func (r *BoltLoginSessionRepo) Close() error {
	return r.db.Close()
}

func (r *BoltLoginSessionRepo) Upsert(sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(sessionID), data)
	})
}

// Get retrieves a login session. Expired sessions are removed and reported
// as ErrSessionExpired.
func (r *BoltLoginSessionRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	var session Session
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if data == nil {
			return apperrors.ErrSessionNotFound
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return Session{}, err
	}

	if session.expired(r.now()) {
		if err := r.Delete(sessionID); err != nil {
			log.Debug().Err(err).Msg("Failed to delete expired login session")
		}
		return Session{}, apperrors.ErrSessionExpired
	}
	return session, nil
}

func (r *BoltLoginSessionRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(sessionID))
	})
}

// SweepExpired also drops records that no longer decode.
func (r *BoltLoginSessionRepo) SweepExpired() (int, error) {
	now := r.now()
	removed := 0
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)

		// keys are collected first, deleting under a live cursor skips entries
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var session Session
			if err := json.Unmarshal(v, &session); err != nil || session.expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweeping expired sessions: %w", err)
	}
	return removed, nil
}
