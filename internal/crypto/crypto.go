// Package crypto contains the passphrase-derived-key primitives protecting
// data at rest: PBKDF2 key stretching and AES-GCM authenticated encryption.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/cyclewise/cyclewise/internal/errs"
)

// Params
const (
	KeyLen     = 32     // AES-256
	SaltLen    = 16     // per-message KDF salt
	NonceLen   = 12     // GCM standard nonce
	Iterations = 100000 // PBKDF2-SHA256
)

// EncryptedData is the portable ciphertext envelope. Salt and nonce are not
// secret but are required for decryption, so they travel with the data.
type EncryptedData struct {
	Data string `json:"data"` // base64 ciphertext||tag
	IV   string `json:"iv"`   // base64 nonce
	Salt string `json:"salt"` // base64 KDF salt
}

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey stretches a passphrase into a 256-bit key using PBKDF2-SHA256.
// Deterministic for the same passphrase and salt; different salts yield
// unlinkable keys.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, KeyLen, sha256.New)
}

// Encrypt seals plaintext under a key derived from passphrase. A fresh salt
// and nonce are generated on every call; nonce reuse under the same key
// breaks GCM confidentiality.
func Encrypt(plaintext, passphrase string) (EncryptedData, error) {
	salt, err := Rand(SaltLen)
	if err != nil {
		return EncryptedData{}, err
	}
	nonce, err := Rand(NonceLen)
	if err != nil {
		return EncryptedData{}, err
	}
	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return EncryptedData{}, err
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return EncryptedData{
		Data: base64.StdEncoding.EncodeToString(ct),
		IV:   base64.StdEncoding.EncodeToString(nonce),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// Decrypt re-derives the key from the stored salt and opens the ciphertext.
// Wrong passphrase, tampered data and malformed input all return
// errs.ErrDecryptFailed; the caller cannot and must not tell them apart.
// Attempting to decrypt a known record doubles as passphrase verification.
func Decrypt(enc EncryptedData, passphrase string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(enc.Data)
	if err != nil {
		return "", errs.ErrDecryptFailed
	}
	nonce, err := base64.StdEncoding.DecodeString(enc.IV)
	if err != nil || len(nonce) != NonceLen {
		return "", errs.ErrDecryptFailed
	}
	salt, err := base64.StdEncoding.DecodeString(enc.Salt)
	if err != nil {
		return "", errs.ErrDecryptFailed
	}
	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", errs.ErrDecryptFailed
	}
	return string(pt), nil
}

// EncryptObject JSON-serializes v and encrypts the result.
func EncryptObject(v any, passphrase string) (EncryptedData, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return EncryptedData{}, err
	}
	return Encrypt(string(b), passphrase)
}

// DecryptObject decrypts and JSON-deserializes into out. Schema validation
// of the result is the caller's responsibility (store codecs do it).
func DecryptObject(enc EncryptedData, passphrase string, out any) error {
	s, err := Decrypt(enc, passphrase)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRecord, err)
	}
	return nil
}

func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
