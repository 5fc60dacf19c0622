package persistence

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/mjhaynes/imagevault/shared/passhash"
	"github.com/mjhaynes/imagevault/vault/domain"
)

// UsersFileName is the reserved name of the user index inside a repository
// directory. It must never be used as an image filename.
const UsersFileName = "users.txt"

// UserStore holds the registered users of one repository, in file order.
// Lookup is linear; the store is small by design.
type UserStore struct {
	path  string
	users []domain.User
}

// LoadUserStore reads the user index at path. A missing file is not an
// error: it yields an empty store, matching a repository nobody has
// registered with yet.
func LoadUserStore(path string) (*UserStore, error) {
	store := &UserStore{path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open user index %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		user, err := parseUser(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		// Duplicate usernames from old files are kept as-is; Find resolves
		// to the first.
		store.users = append(store.users, user)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user index %s: %w", path, err)
	}

	return store, nil
}

// parseUser decodes one `username:hexhash:base64salt` line.
func parseUser(line string) (domain.User, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 3 {
		return domain.User{}, fmt.Errorf("%w: expected 3 fields, got %d", domain.ErrMetadataParse, len(parts))
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: bad salt encoding: %v", domain.ErrMetadataParse, err)
	}

	return domain.User{
		Username:     parts[0],
		PasswordHash: parts[1],
		Salt:         salt,
	}, nil
}

func encodeUser(u domain.User) string {
	return u.Username + ":" + u.PasswordHash + ":" + base64.StdEncoding.EncodeToString(u.Salt)
}

// Save rewrites the user index with one line per user, preserving insertion
// order.
func (s *UserStore) Save() error {
	return atomicWrite(s.path, func(w *bufio.Writer) error {
		for _, u := range s.users {
			if _, err := w.WriteString(encodeUser(u) + "\n"); err != nil {
				return fmt.Errorf("failed to write user index %s: %w", s.path, err)
			}
		}
		return nil
	})
}

// Find returns the first user with the given username, case-sensitively.
func (s *UserStore) Find(username string) (domain.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

// Register creates an account with a fresh salt and appends it to the store.
// The caller persists via Save. Taken usernames are rejected.
func (s *UserStore) Register(username, password string) (domain.User, error) {
	if _, exists := s.Find(username); exists {
		return domain.User{}, fmt.Errorf("%w: %q", domain.ErrDuplicateUser, username)
	}

	user := domain.NewUser(username, password)
	s.users = append(s.users, user)
	return user, nil
}

// Authenticate tests a password for the named user. Unknown usernames and
// wrong passwords both report false; neither is an error.
func (s *UserStore) Authenticate(username, password string) bool {
	user, ok := s.Find(username)
	if !ok {
		return false
	}
	return passhash.Verify(password, user.Salt, user.PasswordHash)
}

// Users returns the stored users in insertion order.
func (s *UserStore) Users() []domain.User {
	return s.users
}
