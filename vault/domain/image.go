package domain

import "github.com/dfryer1193/mjolnir/utils/set"

// Owner identifies the user that uploaded an image. The zero value means the
// image was uploaded anonymously.
type Owner struct {
	name    string
	present bool
}

// Anonymous is the owner of images uploaded without a logged-in user.
var Anonymous = Owner{}

// OwnedBy returns an Owner for the given username.
func OwnedBy(username string) Owner {
	return Owner{name: username, present: true}
}

// Username returns the owning username and whether one is present.
func (o Owner) Username() (string, bool) {
	return o.name, o.present
}

// ImageEntry is the metadata record for one stored image. Entries are
// immutable; changing ownership or visibility means removing and re-adding
// the image.
type ImageEntry struct {
	// filename is relative to the repository directory, e.g. "my-image.png".
	filename string
	owner    Owner
	isPublic bool
}

// NewEntry builds an entry for a stored image.
func NewEntry(filename string, owner Owner, isPublic bool) ImageEntry {
	return ImageEntry{filename: filename, owner: owner, isPublic: isPublic}
}

func (e ImageEntry) Filename() string { return e.filename }

func (e ImageEntry) Owner() (string, bool) { return e.owner.Username() }

func (e ImageEntry) IsPublic() bool { return e.isPublic }

// VisibleTo reports whether the image appears in listings for the given
// username. An empty username means nobody is logged in. Anonymous images are
// visible to everyone regardless of their public flag.
func (e ImageEntry) VisibleTo(username string) bool {
	owner, owned := e.owner.Username()
	if !owned {
		return true
	}
	return e.isPublic || owner == username
}

// RemovableBy reports whether the given username may remove the image. Only
// the owner may remove an image; anonymous images are permanent.
func (e ImageEntry) RemovableBy(username string) bool {
	owner, owned := e.owner.Username()
	return owned && owner == username
}

type ImageStore interface {
	// AddImage copies the file at sourcePath into the repository under
	// targetFilename and records its entry. The caller must pick a
	// targetFilename that does not collide with an existing image.
	AddImage(sourcePath, targetFilename string, owner Owner, isPublic bool) error

	// RemoveImage deletes the named image if requestingUser owns it. It
	// returns false, leaving all state untouched, when the entry is missing,
	// anonymous, or owned by somebody else.
	RemoveImage(filename, requestingUser string) (bool, error)

	// VisibleImages returns the filenames visible to requestingUser. The
	// result is unordered.
	VisibleImages(requestingUser string) set.Set[string]

	// Entry returns the metadata for one image without touching its file.
	Entry(filename string) (ImageEntry, bool)

	// ReadImageBytes returns the stored bytes of the named image.
	ReadImageBytes(filename string) ([]byte, error)

	// SaveImageTo copies the named image to a path outside the repository.
	// If destination is an existing directory, the image keeps its filename.
	SaveImageTo(filename, destination string) error
}
