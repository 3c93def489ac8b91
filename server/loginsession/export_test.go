package loginsession

import (
	"time"

	"go.etcd.io/bbolt"
)

func (r *InMemoryLoginSessionRepo) SetClock(now func() time.Time) {
	r.now = now
}

func (r *BoltLoginSessionRepo) SetClock(now func() time.Time) {
	r.now = now
}

func (r *InMemoryLoginSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *BoltLoginSessionRepo) Len() int {
	n := 0
	_ = r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(sessionsBucket).Stats().KeyN
		return nil
	})
	return n
}
