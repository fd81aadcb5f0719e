package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

const snapshotPrefix = "snapshot/"

// BadgerStore persists snapshots in BadgerDB
type BadgerStore struct {
	db      *badgerdb.DB
	logger  *zap.Logger
	closing int32
}

// NewBadgerStore opens a store in dir. An empty dir opens an in-memory
// database.
func NewBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts badgerdb.Options
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
		opts = badgerdb.DefaultOptions(dir)
		opts.SyncWrites = true
	}
	opts.Logger = newBadgerLogger(logger)
	opts.NumCompactors = 2
	opts.BlockCacheSize = 16 << 20
	opts.IndexCacheSize = 16 << 20

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	logger.Info("snapshot store opened", zap.String("dir", dir), zap.Bool("in_memory", dir == ""))
	return &BadgerStore{db: db, logger: logger}, nil
}

func snapshotKey(name string) []byte {
	return []byte(snapshotPrefix + name)
}

func (s *BadgerStore) check(ctx context.Context) error {
	if atomic.LoadInt32(&s.closing) == 1 {
		return ErrStoreClosed
	}
	return ctx.Err()
}

// Save writes the snapshot under name, replacing any previous one
func (s *BadgerStore) Save(ctx context.Context, name string, snapshot *Snapshot) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	b, err := snapshot.marshal()
	if err != nil {
		return fmt.Errorf("encode snapshot %q: %w", name, err)
	}
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(snapshotKey(name), b)
	}); err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	s.logger.Debug("snapshot saved",
		zap.String("name", name),
		zap.Int("leaves", len(snapshot.Leaves)),
	)
	return nil
}

// Load reads the snapshot stored under name
func (s *BadgerStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(snapshotKey(name))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("%q: %w", name, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return unmarshalSnapshot(raw)
}

// Delete removes the snapshot stored under name
func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		key := snapshotKey(name)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return fmt.Errorf("%q: %w", name, ErrSnapshotNotFound)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List returns the stored names in key order
func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, string(it.Item().Key()[len(snapshotPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return names, nil
}

// Close closes the database; later calls are no-ops
func (s *BadgerStore) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}
	s.logger.Info("closing snapshot store")
	return s.db.Close()
}

// badgerLogger routes badger's log output through zap
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.Logger) *badgerLogger {
	return &badgerLogger{sugar: logger.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }
