package profilestore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/surfai/internal/domain/prediction"
)

// ValkeyStore persists learned profiles in a Valkey-compatible database so
// analyses survive restarts and can be shared across replicas.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a new store backed by Valkey. A zero ttl keeps
// profiles until the next analysis replaces them.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "profile"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ValkeyStore) Get(ctx context.Context, userID string) (*prediction.UserProfile, bool, error) {
	cmd := s.client.B().Get().Key(s.key(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var profile prediction.UserProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

func (s *ValkeyStore) Put(ctx context.Context, profile *prediction.UserProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(profile.UserID)).Value(string(payload))
	var cmd valkey.Completed
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Delete(ctx context.Context, userID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key(userID)).Build()).Error()
}

func (s *ValkeyStore) key(userID string) string {
	return s.prefix + ":" + userID
}

var _ prediction.ProfileStore = (*ValkeyStore)(nil)
