package albumgrid

import "errors"

// Failure classes for a run. Specific causes wrap these, so callers can
// match with errors.Is while logs keep the detail.
var (
	// ErrSourceUnreadable covers a source image that is missing, corrupt,
	// or in a format no decoder handles.
	ErrSourceUnreadable = errors.New("source image unreadable")

	// ErrDestinationUnwritable covers a thumbnail or album file that
	// cannot be saved.
	ErrDestinationUnwritable = errors.New("destination unwritable")

	// ErrNoMatchingFiles means the source directory held nothing with an
	// accepted extension.
	ErrNoMatchingFiles = errors.New("no matching files")

	// ErrTooManyImages means the album cap was exceeded; no album is
	// written.
	ErrTooManyImages = errors.New("too many images for one album")

	// ErrDirCreate means the thumbnail directory could not be created.
	ErrDirCreate = errors.New("cannot create directory")
)
