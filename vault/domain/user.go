package domain

import "github.com/mjhaynes/imagevault/shared/passhash"

// User is a registered account. Accounts are permanent: there is no removal
// or password-change operation, and the plaintext password is never stored.
type User struct {
	Username     string
	PasswordHash string
	Salt         []byte
}

// NewUser creates a user with a fresh random salt.
func NewUser(username, password string) User {
	salt := passhash.NewSalt()
	return User{
		Username:     username,
		PasswordHash: passhash.Hash(password, salt),
		Salt:         salt,
	}
}

// Authenticate tests a candidate password against the stored hash.
func (u User) Authenticate(password string) bool {
	return passhash.Verify(password, u.Salt, u.PasswordHash)
}
