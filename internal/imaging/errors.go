package imaging

import "errors"

var (
	// ErrRead means a local file could not be read or is not a decodable image.
	ErrRead = errors.New("failed to read image file")

	// ErrNotFound means the remote responded 404 for the requested image.
	ErrNotFound = errors.New("image not found (404)")

	// ErrCrossOrigin means the fetch failed at the transport level, which is
	// indistinguishable from a blocked cross-origin request. The user can work
	// around it by downloading the image and uploading it manually.
	ErrCrossOrigin = errors.New("image could not be fetched, download it and upload it manually")

	// ErrFetch covers any other non-success remote response.
	ErrFetch = errors.New("image fetch failed")
)
