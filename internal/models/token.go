package models

import "time"

type TokenStatus string

const (
	TokenStatusActive   TokenStatus = "ACTIVE"
	TokenStatusInactive TokenStatus = "INACTIVE"
)

func (s TokenStatus) Valid() bool {
	return s == TokenStatusActive || s == TokenStatusInactive
}

type Token struct {
	ID        int64       `json:"id"`
	Token     string      `json:"token"`
	Status    TokenStatus `json:"status"`
	UserID    int64       `json:"user_id"`
	ProjectID int64       `json:"project_id"`
	CreatedAt time.Time   `json:"created_at"`
}

const maskedTokenSuffix = 4

// Masked returns a copy whose token keeps only its last few characters, for
// listings that must not leak usable credentials.
func (t Token) Masked() Token {
	if len(t.Token) <= 2*maskedTokenSuffix {
		t.Token = "****"
		return t
	}
	t.Token = "****" + t.Token[len(t.Token)-maskedTokenSuffix:]
	return t
}

// TokenIdentity is what an authenticated request acts as.
type TokenIdentity struct {
	UserID    int64 `json:"user_id"`
	ProjectID int64 `json:"project_id"`
}
