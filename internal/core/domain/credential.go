package domain

import "time"

// CredentialTTL is the lifetime of an issued credential.
const CredentialTTL = 7 * 24 * time.Hour

// Credential is the client-held proof of authentication.
type Credential struct {
	RawToken  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewCredential stamps a freshly issued token with its expiry.
func NewCredential(token string, issuedAt time.Time) Credential {
	return Credential{
		RawToken:  token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(CredentialTTL),
	}
}

// Expired reports whether the credential is past its expiry at now.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
