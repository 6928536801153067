package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/redis"
)

// jsonKV is the slice of pkg/redis.Client the redis store needs.
type jsonKV interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	UpdateJSON(ctx context.Context, key string, ttl time.Duration, fn func(current []byte, found bool) (any, error)) error
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// RedisStore keeps sessions as JSON documents. Update is optimistic: a write
// that races another one on the same session is retried on the fresh copy.
type RedisStore struct {
	client jsonKV
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client jsonKV, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (r *RedisStore) Create(ctx context.Context) (*Session, error) {
	s := New(r.now())
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	found, err := r.client.GetJSON(ctx, r.client.SessionKey(id), &s)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if !found {
		return nil, notFound(id)
	}
	return &s, nil
}

// Update may call fn more than once when another writer changes the session
// first; fn always receives the latest stored copy.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	var (
		updated *Session
		failed  error
	)
	err := r.client.UpdateJSON(ctx, r.client.SessionKey(id), r.ttl, func(current []byte, found bool) (any, error) {
		if !found {
			failed = notFound(id)
			return nil, failed
		}
		var s Session
		if err := json.Unmarshal(current, &s); err != nil {
			failed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session")
			return nil, failed
		}
		if err := fn(&s); err != nil {
			failed = err
			return nil, err
		}
		s.UpdatedAt = r.now()
		updated = &s
		return &s, nil
	})
	switch {
	case err == nil:
		return updated, nil
	case failed != nil:
		return nil, failed
	case errors.Is(err, redis.ErrConflict):
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "session changed concurrently")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update session")
	}
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.client.SessionKey(id)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	return nil
}

func (r *RedisStore) save(ctx context.Context, s *Session) error {
	if err := r.client.SetJSON(ctx, r.client.SessionKey(s.ID), s, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session")
	}
	return nil
}

// clone deep-copies s through its JSON form, the same form the redis store keeps.
func clone(s *Session) (*Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy session")
	}
	var out Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy session")
	}
	return &out, nil
}
