package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/endocare/internal/models"
)

var (
	ErrStoreWrite    = errors.New("store write failed")
	ErrStoreRead     = errors.New("store read failed")
	ErrUnknownKind   = errors.New("unknown record kind")
	ErrInvalidOwner  = errors.New("invalid owner id")
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordBackend is one storage engine. Implementations assign the record id
// on Insert and return records of a kind for one owner, newest date first.
type RecordBackend interface {
	Name() string
	Insert(ctx context.Context, record models.Record) error
	List(ctx context.Context, kind models.Kind, ownerID uint) ([]models.Record, error)
	// LatestCreatedAt is the newest stored created_at of kind, zero when the
	// kind has no records.
	LatestCreatedAt(ctx context.Context, kind models.Kind) (time.Time, error)
	Ping(ctx context.Context) error
	Close() error
}

type ReadFailurePolicy int

const (
	// ReadFailureReturnEmpty logs a failed list and returns no records.
	ReadFailureReturnEmpty ReadFailurePolicy = iota
	// ReadFailurePropagate returns ErrStoreRead to the caller.
	ReadFailurePropagate
)

func ParseReadFailurePolicy(raw string) (ReadFailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "return_empty":
		return ReadFailureReturnEmpty, nil
	case "propagate":
		return ReadFailurePropagate, nil
	default:
		return ReadFailureReturnEmpty, fmt.Errorf("unknown read failure policy %q", raw)
	}
}

func (policy ReadFailurePolicy) String() string {
	if policy == ReadFailurePropagate {
		return "propagate"
	}
	return "return_empty"
}

type RecordStore struct {
	backend RecordBackend
	policy  ReadFailurePolicy
	logger  logrus.FieldLogger
	now     func() time.Time

	kindLocks map[models.Kind]*sync.Mutex
	stampMu   sync.Mutex
	lastStamp map[models.Kind]time.Time
	seeded    map[models.Kind]bool
}

type RecordStoreOption func(store *RecordStore)

func WithReadFailurePolicy(policy ReadFailurePolicy) RecordStoreOption {
	return func(store *RecordStore) {
		store.policy = policy
	}
}

func WithStoreLogger(logger logrus.FieldLogger) RecordStoreOption {
	return func(store *RecordStore) {
		if logger != nil {
			store.logger = logger
		}
	}
}

func WithClock(now func() time.Time) RecordStoreOption {
	return func(store *RecordStore) {
		if now != nil {
			store.now = now
		}
	}
}

func NewRecordStore(backend RecordBackend, options ...RecordStoreOption) *RecordStore {
	store := &RecordStore{
		backend:   backend,
		policy:    ReadFailureReturnEmpty,
		logger:    logrus.StandardLogger(),
		now:       time.Now,
		kindLocks: make(map[models.Kind]*sync.Mutex),
		lastStamp: make(map[models.Kind]time.Time),
		seeded:    make(map[models.Kind]bool),
	}
	for _, kind := range models.AllKinds() {
		store.kindLocks[kind] = &sync.Mutex{}
	}
	for _, option := range options {
		option(store)
	}
	return store
}

func (store *RecordStore) BackendName() string {
	return store.backend.Name()
}

func (store *RecordStore) ReadFailurePolicy() ReadFailurePolicy {
	return store.policy
}

// Insert validates fields for kind and persists the resulting record.
func (store *RecordStore) Insert(ctx context.Context, ownerID uint, kind models.Kind, fields Fields) (models.Record, error) {
	record, err := BuildRecord(kind, fields)
	if err != nil {
		return nil, err
	}
	return store.InsertRecord(ctx, ownerID, record)
}

// InsertRecord stamps owner and created_at on an already built record and
// hands it to the backend, which fills in the id.
func (store *RecordStore) InsertRecord(ctx context.Context, ownerID uint, record models.Record) (models.Record, error) {
	if ownerID == 0 {
		return nil, ErrInvalidOwner
	}
	if record == nil {
		return nil, ErrInvalidRecord
	}
	kind := record.Kind()
	lock, ok := store.kindLocks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	record.SetRecordID(0)

	lock.Lock()
	defer lock.Unlock()

	store.seedStamp(ctx, kind)
	createdAt := store.nextStamp(kind)
	record.Stamp(ownerID, createdAt)
	if err := store.backend.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: insert %s: %w", ErrStoreWrite, kind, err)
	}
	store.commitStamp(kind, createdAt)
	return record, nil
}

// ListAll returns the owner's records of kind, newest date first. A backend
// failure is handled according to the store's ReadFailurePolicy.
func (store *RecordStore) ListAll(ctx context.Context, ownerID uint, kind models.Kind) ([]models.Record, error) {
	if _, ok := store.kindLocks[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	records, err := store.backend.List(ctx, kind, ownerID)
	if err != nil {
		if store.policy == ReadFailurePropagate {
			return nil, fmt.Errorf("%w: list %s: %w", ErrStoreRead, kind, err)
		}
		store.logger.WithError(err).WithFields(logrus.Fields{
			"kind":    kind,
			"backend": store.backend.Name(),
		}).Warn("list failed, returning empty result")
		return []models.Record{}, nil
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (store *RecordStore) Ping(ctx context.Context) error {
	return store.backend.Ping(ctx)
}

func (store *RecordStore) Close() error {
	return store.backend.Close()
}

// seedStamp loads the newest stored created_at of kind once per process so
// the clamp also holds across restarts. A failed lookup is retried on the
// next insert.
func (store *RecordStore) seedStamp(ctx context.Context, kind models.Kind) {
	store.stampMu.Lock()
	done := store.seeded[kind]
	store.stampMu.Unlock()
	if done {
		return
	}

	latest, err := store.backend.LatestCreatedAt(ctx, kind)
	if err != nil {
		store.logger.WithError(err).WithField("kind", kind).Warn("could not load latest created_at")
		return
	}

	store.stampMu.Lock()
	defer store.stampMu.Unlock()
	store.seeded[kind] = true
	if latest = latest.UTC(); latest.After(store.lastStamp[kind]) {
		store.lastStamp[kind] = latest
	}
}

// nextStamp never returns a time before the last committed stamp of kind.
// Callers hold the kind lock.
func (store *RecordStore) nextStamp(kind models.Kind) time.Time {
	now := store.now().UTC()

	store.stampMu.Lock()
	defer store.stampMu.Unlock()
	if last, ok := store.lastStamp[kind]; ok && now.Before(last) {
		return last
	}
	return now
}

func (store *RecordStore) commitStamp(kind models.Kind, stamp time.Time) {
	store.stampMu.Lock()
	defer store.stampMu.Unlock()
	store.lastStamp[kind] = stamp
}
