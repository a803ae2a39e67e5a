package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

// Store is the durable key-value slot holding the serialized credential.
// Get returns "" when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// DefaultKey is the slot key used when none is configured.
const DefaultKey = "credential"

var errLegacyCredential = errors.New("unrecognised credential format")

// storedCredential is the only accepted persisted shape.
type storedCredential struct {
	Value    string    `json:"value"`
	Expiry   time.Time `json:"expiry"`
	IssuedAt time.Time `json:"issued_at"`
}

func encodeCredential(c domain.Credential) (string, error) {
	b, err := json.Marshal(storedCredential{
		Value:    c.RawToken,
		Expiry:   c.ExpiresAt.UTC(),
		IssuedAt: c.IssuedAt.UTC(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeCredential accepts only the structured object form. A bare token
// string, as written by older clients, is rejected rather than guessed at.
func decodeCredential(raw string) (domain.Credential, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return domain.Credential{}, errLegacyCredential
	}

	var sc storedCredential
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return domain.Credential{}, errLegacyCredential
	}
	if sc.Value == "" || sc.Expiry.IsZero() {
		return domain.Credential{}, errLegacyCredential
	}

	return domain.Credential{
		RawToken:  sc.Value,
		IssuedAt:  sc.IssuedAt,
		ExpiresAt: sc.Expiry,
	}, nil
}
