package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User is a sync-server account. The server only ever sees opaque encrypted
// records; the password here gates the account, not the data key.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   []byte    // Argon2id(password, SaltAuth)
	SaltAuth  []byte    // per-user auth salt
	CreatedAt time.Time
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}
