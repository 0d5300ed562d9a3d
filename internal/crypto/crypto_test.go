package crypto

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/cyclewise/cyclewise/internal/errs"
)

func TestRand_LengthUniq(t *testing.T) {
	t.Parallel()
	const n = 48
	a, err := Rand(n)
	if err != nil {
		t.Fatalf("Rand: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, _ := Rand(n)
	if bytes.Equal(a, b) {
		t.Fatalf("Rand produced equal slices")
	}
}

func TestDeriveKey_DeterministicAndSaltDependent(t *testing.T) {
	t.Parallel()
	s1 := []byte("salt-1-salt-1-1!")
	s2 := []byte("salt-2-salt-2-2!")
	k1 := DeriveKey("secret-pass", s1)
	k2 := DeriveKey("secret-pass", s1)
	if subtle.ConstantTimeCompare(k1, k2) != 1 {
		t.Fatalf("DeriveKey not deterministic")
	}
	if len(k1) != KeyLen {
		t.Fatalf("key len=%d, want=%d", len(k1), KeyLen)
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey("secret-pass", s2)) != 0 {
		t.Fatalf("DeriveKey must change with salt")
	}
	if subtle.ConstantTimeCompare(k1, DeriveKey("other", s1)) != 0 {
		t.Fatalf("DeriveKey must change with passphrase")
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	t.Parallel()
	const pt = `{"id":"health-profile","cycleLengthAvg":28}`
	enc, err := Encrypt(pt, "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc.Data == "" || enc.IV == "" || enc.Salt == "" {
		t.Fatalf("envelope has empty fields: %+v", enc)
	}
	got, err := Decrypt(enc, "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != pt {
		t.Fatalf("roundtrip mismatch: %q", got)
	}
}

func TestEncrypt_FreshSaltAndNonce(t *testing.T) {
	t.Parallel()
	a, err := Encrypt("same plaintext", "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := Encrypt("same plaintext", "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a.Salt == b.Salt || a.IV == b.IV || a.Data == b.Data {
		t.Fatalf("repeated Encrypt reused salt/nonce/ciphertext")
	}
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	t.Parallel()
	enc, err := Encrypt("payload", "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(enc, "Wrong-Horse-Battery-2!xx"); !errors.Is(err, errs.ErrDecryptFailed) {
		t.Fatalf("want ErrDecryptFailed, got %v", err)
	}
}

func TestDecrypt_TamperAnyField(t *testing.T) {
	t.Parallel()
	enc, err := Encrypt("payload", "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	flip := func(b64 string) string {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		raw[0] ^= 0x01
		return base64.StdEncoding.EncodeToString(raw)
	}

	cases := map[string]EncryptedData{
		"data":          {Data: flip(enc.Data), IV: enc.IV, Salt: enc.Salt},
		"iv":            {Data: enc.Data, IV: flip(enc.IV), Salt: enc.Salt},
		"salt":          {Data: enc.Data, IV: enc.IV, Salt: flip(enc.Salt)},
		"bad base64":    {Data: "not base64!!", IV: enc.IV, Salt: enc.Salt},
		"short nonce":   {Data: enc.Data, IV: base64.StdEncoding.EncodeToString([]byte("short")), Salt: enc.Salt},
		"empty":         {},
		"swapped nonce": {Data: enc.Data, IV: enc.Salt, Salt: enc.Salt},
	}
	for name, bad := range cases {
		if _, err := Decrypt(bad, "Correct-Horse-Battery-1!"); !errors.Is(err, errs.ErrDecryptFailed) {
			t.Fatalf("%s: want ErrDecryptFailed, got %v", name, err)
		}
	}
}

func TestEncryptDecryptObject(t *testing.T) {
	t.Parallel()
	type rec struct {
		ID   string `json:"id"`
		Days int    `json:"days"`
	}
	in := rec{ID: "period-1", Days: 5}
	enc, err := EncryptObject(in, "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("EncryptObject: %v", err)
	}
	var out rec
	if err := DecryptObject(enc, "Correct-Horse-Battery-1!", &out); err != nil {
		t.Fatalf("DecryptObject: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}
}

func TestDecryptObject_NotJSON(t *testing.T) {
	t.Parallel()
	enc, err := Encrypt("not json at all", "Correct-Horse-Battery-1!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	var out map[string]any
	if err := DecryptObject(enc, "Correct-Horse-Battery-1!", &out); !errors.Is(err, errs.ErrInvalidRecord) {
		t.Fatalf("want ErrInvalidRecord, got %v", err)
	}
}
