package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dfryer1193/mjolnir/utils/set"
	"github.com/mjhaynes/imagevault/vault/domain"
)

var _ domain.ImageStore = (*Repository)(nil)

// ImageDataFileName is the reserved name of the image index inside a
// repository directory.
const ImageDataFileName = "imagedata.txt"

const publicToken = "public"
const privateToken = "private"

// Repository is a directory-backed image store. The image files live flat in
// the directory next to the two metadata files, and every mutation keeps the
// in-memory index, the on-disk index, and the directory contents in
// lock-step. Instances are not safe for concurrent mutation; callers must
// serialize access themselves.
type Repository struct {
	dir    string
	images map[string]domain.ImageEntry
	users  *UserStore
}

// Open loads the repository stored in dir. If the image index file is
// missing, entries are synthesized from a directory scan instead: one
// anonymous public entry per regular file, so a plain folder of images can
// be opened as a repository.
func Open(dir string) (*Repository, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
	}

	users, err := LoadUserStore(filepath.Join(dir, UsersFileName))
	if err != nil {
		return nil, err
	}

	images, err := loadImageIndex(filepath.Join(dir, ImageDataFileName))
	if errors.Is(err, os.ErrNotExist) {
		images, err = scanDirectory(dir)
	}
	if err != nil {
		return nil, err
	}

	return &Repository{dir: dir, images: images, users: users}, nil
}

// loadImageIndex reads `filename:owner:visibility` lines. An empty owner
// field marks an anonymous upload; any visibility token other than "public"
// is private. Filenames containing ':' are a known limitation of the format
// and corrupt parsing. A missing file is reported with a wrapped
// os.ErrNotExist so Open can fall back to a directory scan; any other open
// failure surfaces as-is.
func loadImageIndex(path string) (map[string]domain.ImageEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image index %s: %w", path, err)
	}
	defer f.Close()

	images := make(map[string]domain.ImageEntry)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Split(scanner.Text(), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%s line %d: %w: expected 3 fields, got %d",
				path, lineNo, domain.ErrMetadataParse, len(parts))
		}

		owner := domain.Anonymous
		if parts[1] != "" {
			owner = domain.OwnedBy(parts[1])
		}
		images[parts[0]] = domain.NewEntry(parts[0], owner, parts[2] == publicToken)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image index %s: %w", path, err)
	}

	return images, nil
}

// scanDirectory synthesizes an index from the files already present in dir,
// skipping subdirectories and the reserved metadata filenames.
func scanDirectory(dir string) (map[string]domain.ImageEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	images := make(map[string]domain.ImageEntry)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == UsersFileName || name == ImageDataFileName {
			continue
		}
		images[name] = domain.NewEntry(name, domain.Anonymous, true)
	}

	return images, nil
}

// Dir returns the backing directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Users returns the repository's user store.
func (r *Repository) Users() *UserStore {
	return r.users
}

func (r *Repository) imagePath(filename string) string {
	return filepath.Join(r.dir, filename)
}

// AddImage copies the file at sourcePath into the repository under
// targetFilename, records the entry, and persists the index. The entry is
// only recorded once the copy has succeeded, so a failed copy leaves the
// repository untouched.
func (r *Repository) AddImage(sourcePath, targetFilename string, owner domain.Owner, isPublic bool) error {
	if _, exists := r.images[targetFilename]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateFilename, targetFilename)
	}

	dest := r.imagePath(targetFilename)
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %q exists on disk", domain.ErrDuplicateFilename, targetFilename)
	}

	if err := copyFile(sourcePath, dest); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCopyFailed, err)
	}

	r.images[targetFilename] = domain.NewEntry(targetFilename, owner, isPublic)
	return r.PersistImageIndex()
}

// RemoveImage deletes the named image on behalf of requestingUser. Removal
// is refused, with no error and no state change, unless the entry is owned
// by exactly requestingUser; anonymous images are permanent. The file is
// deleted before the index is touched, so a failed delete cannot leave an
// index entry pointing at nothing.
func (r *Repository) RemoveImage(filename, requestingUser string) (bool, error) {
	entry, ok := r.images[filename]
	if !ok || !entry.RemovableBy(requestingUser) {
		return false, nil
	}

	if err := os.Remove(r.imagePath(filename)); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("%w: %v", domain.ErrDeleteFailed, err)
	}

	delete(r.images, filename)
	if err := r.PersistImageIndex(); err != nil {
		return true, err
	}
	return true, nil
}

// VisibleImages returns the set of filenames requestingUser may see. An
// empty requestingUser means nobody is logged in. Callers wanting a stable
// order must sort the items themselves.
func (r *Repository) VisibleImages(requestingUser string) set.Set[string] {
	visible := set.New[string]()
	for name, entry := range r.images {
		if entry.VisibleTo(requestingUser) {
			visible.Add(name)
		}
	}
	return visible
}

// Entry returns the metadata record for one image without reading its file.
func (r *Repository) Entry(filename string) (domain.ImageEntry, bool) {
	entry, ok := r.images[filename]
	return entry, ok
}

// ReadImageBytes returns the raw stored bytes of the named image. Decoding
// those bytes into a renderable image is the caller's concern.
func (r *Repository) ReadImageBytes(filename string) ([]byte, error) {
	data, err := os.ReadFile(r.imagePath(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageRead, err)
	}
	return data, nil
}

// SaveImageTo copies the named image to a path outside the repository. A
// destination naming an existing directory receives the image under its
// stored filename.
func (r *Repository) SaveImageTo(filename, destination string) error {
	if info, err := os.Stat(destination); err == nil && info.IsDir() {
		destination = filepath.Join(destination, filename)
	}

	if err := copyFile(r.imagePath(filename), destination); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCopyFailed, err)
	}
	return nil
}

// PersistImageIndex rewrites the on-disk image index from the in-memory one.
func (r *Repository) PersistImageIndex() error {
	path := filepath.Join(r.dir, ImageDataFileName)
	return atomicWrite(path, func(w *bufio.Writer) error {
		for _, entry := range r.images {
			if _, err := w.WriteString(encodeEntry(entry) + "\n"); err != nil {
				return fmt.Errorf("failed to write image index %s: %w", path, err)
			}
		}
		return nil
	})
}

// PersistUsers rewrites the on-disk user index.
func (r *Repository) PersistUsers() error {
	return r.users.Save()
}

func encodeEntry(e domain.ImageEntry) string {
	owner, _ := e.Owner()
	visibility := privateToken
	if e.IsPublic() {
		visibility = publicToken
	}
	return e.Filename() + ":" + owner + ":" + visibility
}

// copyFile copies src to dest byte for byte. A failed copy removes the
// partial destination file so no residue is left behind.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
