// Package passhash implements the salted password hashing used by the user
// index: lowercase hex SHA-512 over salt followed by the password bytes.
// The encoding is fixed by the on-disk user file format.
package passhash

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// SaltLength is the number of random bytes in every salt.
const SaltLength = 16

// NewSalt returns a fresh random salt. Salt generation has no safe fallback,
// so an unavailable secure random source aborts the process.
func NewSalt() []byte {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		panic(fmt.Sprintf("passhash: secure random source unavailable: %v", err))
	}
	return salt
}

// Hash digests salt followed by the password and renders the result as a
// lowercase hex string. Same inputs always produce the same output.
func Hash(password string, salt []byte) string {
	h := sha512.New()
	h.Write(salt)
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest for a candidate password and compares it to
// the stored one in constant time.
func Verify(password string, salt []byte, expected string) bool {
	computed := Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1
}
