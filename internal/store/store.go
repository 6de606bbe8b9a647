// Package store persists client state under a single bbolt database: the
// server configuration, user preferences, the permission decision history,
// and a best-effort session cache.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"occtl/internal/types"
)

var (
	bucketServerConfig = []byte("server_config")
	bucketPreferences  = []byte("preferences")
	bucketHistory      = []byte("permission_history")
	bucketSessionCache = []byte("session_cache")

	keyServerConfig = []byte("config")
	keyPreferences  = []byte("preferences")
	keySessions     = []byte("sessions")
)

type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketServerConfig, bucketPreferences, bucketHistory, bucketSessionCache} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// ServerConfig returns the saved server configuration, if any.
func (s *Store) ServerConfig(ctx context.Context) (*types.ServerConfig, bool, error) {
	var (
		out *types.ServerConfig
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketServerConfig).Get(keyServerConfig)
		if len(raw) == 0 {
			return nil
		}
		var cfg types.ServerConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return err
		}
		out = &cfg
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *Store) SaveServerConfig(ctx context.Context, cfg types.ServerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketServerConfig).Put(keyServerConfig, raw)
	})
}

func (s *Store) DeleteServerConfig(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketServerConfig).Delete(keyServerConfig)
	})
}

// Preferences returns the saved preferences, falling back to defaults when
// nothing has been saved yet.
func (s *Store) Preferences(ctx context.Context) (types.Preferences, error) {
	prefs := types.DefaultPreferences()
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPreferences).Get(keyPreferences)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &prefs)
	})
	if err != nil {
		return types.DefaultPreferences(), err
	}
	return prefs, nil
}

func (s *Store) SavePreferences(ctx context.Context, prefs types.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPreferences).Put(keyPreferences, raw)
	})
}

// UpdatePreferences applies update to the current preferences inside a single
// transaction and returns the result.
func (s *Store) UpdatePreferences(ctx context.Context, update func(*types.Preferences)) (types.Preferences, error) {
	prefs := types.DefaultPreferences()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPreferences)
		if raw := b.Get(keyPreferences); len(raw) > 0 {
			if err := json.Unmarshal(raw, &prefs); err != nil {
				return err
			}
		}
		if update != nil {
			update(&prefs)
		}
		raw, err := json.Marshal(prefs)
		if err != nil {
			return err
		}
		return b.Put(keyPreferences, raw)
	})
	if err != nil {
		return types.DefaultPreferences(), err
	}
	return prefs, nil
}

func (s *Store) ResetPreferences(ctx context.Context) error {
	return s.SavePreferences(ctx, types.DefaultPreferences())
}

// ListDecisions returns the permission decision history in append order.
func (s *Store) ListDecisions(ctx context.Context) ([]types.PermissionDecision, error) {
	out := make([]types.PermissionDecision, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).ForEach(func(_, v []byte) error {
			var decision types.PermissionDecision
			if err := json.Unmarshal(v, &decision); err != nil {
				return err
			}
			out = append(out, decision)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SessionDecisions returns the history entries recorded for one session.
func (s *Store) SessionDecisions(ctx context.Context, sessionID string) ([]types.PermissionDecision, error) {
	all, err := s.ListDecisions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.PermissionDecision, 0, len(all))
	for _, decision := range all {
		if decision.SessionID == sessionID {
			out = append(out, decision)
		}
	}
	return out, nil
}

// AppendDecision adds one entry to the history. Keys are the bucket sequence
// number so iteration preserves append order.
func (s *Store) AppendDecision(ctx context.Context, decision types.PermissionDecision) error {
	if decision.SessionID == "" || decision.Type == "" {
		return errors.New("decision requires sessionID and type")
	}
	if !decision.Response.Valid() {
		return errors.New("decision response is invalid")
	}
	raw, err := json.Marshal(decision)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, raw)
	})
}

func (s *Store) ClearDecisions(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	})
}

// CachedSessions returns the last cached session list, which may be stale.
func (s *Store) CachedSessions(ctx context.Context) ([]types.Session, error) {
	out := make([]types.Session, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSessionCache).Get(keySessions)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CacheSessions(ctx context.Context, sessions []types.Session) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessionCache).Put(keySessions, raw)
	})
}

// Clear wipes every bucket. Used by the settings reset flow.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketServerConfig, bucketPreferences, bucketHistory, bucketSessionCache} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
