package application

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/mjhaynes/imagevault/vault/domain"
	"github.com/mjhaynes/imagevault/vault/persistence"
	"github.com/rs/zerolog/log"
)

// Session drives one user's interaction with a repository: opening it,
// logging in or registering, and uploading, removing, listing and exporting
// images scoped to the logged-in user. Front-ends hold a Session instead of
// touching the stores directly.
type Session struct {
	images domain.ImageStore
	users  *persistence.UserStore

	currentUser string
	loggedIn    bool
}

// New starts a logged-out session over the given stores.
func New(images domain.ImageStore, users *persistence.UserStore) *Session {
	return &Session{images: images, users: users}
}

// Open loads the repository at dir and starts a logged-out session on it.
func Open(dir string) (*Session, error) {
	repo, err := persistence.Open(dir)
	if err != nil {
		return nil, err
	}

	log.Info().Str("directory", dir).
		Int("images", len(repo.VisibleImages("").Items())).
		Msg("Opened image repository")

	return New(repo, repo.Users()), nil
}

// Images exposes the image store for callers needing direct access.
func (s *Session) Images() domain.ImageStore {
	return s.images
}

// CurrentUser returns the logged-in username, if any.
func (s *Session) CurrentUser() (string, bool) {
	return s.currentUser, s.loggedIn
}

// Login authenticates against the user store. A wrong password or unknown
// username reports false; it is a rejection, not an error.
func (s *Session) Login(username, password string) bool {
	if !s.users.Authenticate(username, password) {
		log.Warn().Str("username", username).Msg("Login rejected")
		return false
	}

	s.currentUser = username
	s.loggedIn = true
	log.Info().Str("username", username).Msg("Logged in")
	return true
}

// LoginOrRegister logs in an existing user, or registers the username as a
// new account when it is unknown and logs that in. This is the flow an
// interactive front-end offers at its login prompt. A known username with a
// wrong password reports false.
func (s *Session) LoginOrRegister(username, password string) (bool, error) {
	if _, exists := s.users.Find(username); !exists {
		if _, err := s.users.Register(username, password); err != nil {
			return false, err
		}
		if err := s.users.Save(); err != nil {
			return false, fmt.Errorf("failed to persist new user %q: %w", username, err)
		}
		log.Info().Str("username", username).Msg("Registered new user")
	}

	return s.Login(username, password), nil
}

// Logout drops the session's user; later operations run anonymously.
func (s *Session) Logout() {
	s.currentUser = ""
	s.loggedIn = false
}

// Upload copies the file at sourcePath into the repository under a freshly
// generated non-colliding filename that keeps the source's extension, owned
// by the logged-in user or anonymous otherwise. It returns the stored
// filename.
func (s *Session) Upload(sourcePath string, isPublic bool) (string, error) {
	filename := uuid.New().String() + filepath.Ext(sourcePath)

	owner := domain.Anonymous
	if s.loggedIn {
		owner = domain.OwnedBy(s.currentUser)
	}

	if err := s.images.AddImage(sourcePath, filename, owner, isPublic); err != nil {
		return "", err
	}

	log.Info().Str("filename", filename).Str("source", sourcePath).
		Str("owner", s.currentUser).Bool("public", isPublic).
		Msg("Uploaded image")
	return filename, nil
}

// Remove deletes the named image if the logged-in user owns it.
func (s *Session) Remove(filename string) (bool, error) {
	removed, err := s.images.RemoveImage(filename, s.currentUser)
	if err != nil {
		return removed, err
	}
	if removed {
		log.Info().Str("filename", filename).Str("owner", s.currentUser).
			Msg("Removed image")
	}
	return removed, nil
}

// List returns the filenames visible to the session's user, sorted for
// stable display.
func (s *Session) List() []string {
	names := s.images.VisibleImages(s.currentUser).Items()
	sort.Strings(names)
	return names
}

// Export copies a stored image to a path outside the repository.
func (s *Session) Export(filename, destination string) error {
	return s.images.SaveImageTo(filename, destination)
}

// Decode reads a stored image and decodes it with the registered codecs
// (PNG, JPEG, GIF). Bytes that are not a valid image container fail with
// domain.ErrImageDecode.
func (s *Session) Decode(filename string) (image.Image, error) {
	data, err := s.images.ReadImageBytes(filename)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrImageDecode, filename, err)
	}
	return img, nil
}
