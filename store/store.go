package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a subject has no stored payload. Callers
// treat it as "no grants", not as a failure.
var ErrNotFound = errors.New("permission payload not found")

// ErrUnavailable is returned when the Redis backend cannot be reached.
var ErrUnavailable = errors.New("permission store unavailable")

// ErrCorruptPayload is returned when a stored envelope fails to decode.
var ErrCorruptPayload = errors.New("permission payload corrupt")

// Payload is a stored raw permission blob plus bookkeeping. Raw keeps
// whatever shape the identity provider emitted; normalization happens in
// the engine, once per payload change.
type Payload struct {
	Raw      any
	Revision string
	StoredAt time.Time
}

// Signal is published on the invalidation channel whenever a subject's
// payload is saved or deleted. Revision is empty for deletions.
type Signal struct {
	SubjectID string `json:"subject_id"`
	Revision  string `json:"revision,omitempty"`
}

// KeyBuilder defines the Redis key layout for payloads and the
// invalidation channel.
type KeyBuilder interface {
	PayloadKey(subjectID string) string
	InvalidationChannel() string
}

type defaultKeys struct {
	prefix string
}

func (k defaultKeys) PayloadKey(subjectID string) string {
	return k.prefix + ":perm:" + subjectID
}

func (k defaultKeys) InvalidationChannel() string {
	return k.prefix + ":perm:invalidated"
}

// Config controls key layout and payload lifetime.
//
// Config instances are intended to be configured during initialization
// and then treated as immutable.
type Config struct {
	Prefix     string
	PayloadTTL time.Duration // 0 keeps payloads until explicitly invalidated
	Keys       KeyBuilder    // optional layout override
}

// Store is a Redis-backed payload store. Safe for concurrent use.
type Store struct {
	client *redis.Client
	cfg    Config
	keys   KeyBuilder
}

// New creates a [Store] over the given client.
func New(client *redis.Client, cfg Config) *Store {
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = "goperm"
	}
	keys := cfg.Keys
	if keys == nil {
		keys = defaultKeys{prefix: cfg.Prefix}
	}
	return &Store{client: client, cfg: cfg, keys: keys}
}

// The stored envelope frames the provider blob without interpreting it.
type envelope struct {
	Revision string          `json:"rev"`
	StoredAt int64           `json:"at"`
	Perms    json.RawMessage `json:"perms"`
}

// Fetch returns the stored payload for the subject. [ErrNotFound] when
// none exists.
func (s *Store) Fetch(ctx context.Context, subjectID string) (Payload, error) {
	if s == nil || s.client == nil {
		return Payload{}, ErrUnavailable
	}

	data, err := s.client.Get(ctx, s.keys.PayloadKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, ErrNotFound
	}
	if err != nil {
		return Payload{}, ErrUnavailable
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Payload{}, ErrCorruptPayload
	}

	var raw any
	if len(env.Perms) > 0 {
		if err := json.Unmarshal(env.Perms, &raw); err != nil {
			return Payload{}, ErrCorruptPayload
		}
	}

	return Payload{
		Raw:      raw,
		Revision: env.Revision,
		StoredAt: time.Unix(env.StoredAt, 0).UTC(),
	}, nil
}

// Save stores the raw payload under a fresh UUID revision and publishes
// an invalidation signal carrying it. Returns the revision.
func (s *Store) Save(ctx context.Context, subjectID string, raw any) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrUnavailable
	}

	perms, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}

	revision := uuid.NewString()
	data, err := json.Marshal(envelope{
		Revision: revision,
		StoredAt: time.Now().Unix(),
		Perms:    perms,
	})
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.keys.PayloadKey(subjectID), data, s.cfg.PayloadTTL).Err(); err != nil {
		return "", ErrUnavailable
	}

	s.publish(ctx, Signal{SubjectID: subjectID, Revision: revision})
	return revision, nil
}

// Invalidate deletes the stored payload and publishes a revision-less
// signal. Deleting an absent payload is not an error.
func (s *Store) Invalidate(ctx context.Context, subjectID string) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}

	if err := s.client.Del(ctx, s.keys.PayloadKey(subjectID)).Err(); err != nil {
		return ErrUnavailable
	}

	s.publish(ctx, Signal{SubjectID: subjectID})
	return nil
}

func (s *Store) publish(ctx context.Context, sig Signal) {
	data, err := json.Marshal(sig)
	if err != nil {
		return
	}
	// Best effort: a dropped signal only delays a refresh, it never
	// widens access.
	_ = s.client.Publish(ctx, s.keys.InvalidationChannel(), data).Err()
}

// Subscribe delivers invalidation signals to handler until ctx is done.
// It blocks; run it in its own goroutine. Undecodable messages are
// skipped.
func (s *Store) Subscribe(ctx context.Context, handler func(Signal)) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}

	pubsub := s.client.Subscribe(ctx, s.keys.InvalidationChannel())
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return ErrUnavailable
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var sig Signal
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				continue
			}
			if handler != nil {
				handler(sig)
			}
		}
	}
}
