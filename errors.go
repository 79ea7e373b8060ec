package pixcodec

import "errors"

var (
	// ErrUnknownFormat indicates neither signature, extension nor header
	// plausibility identified the container.
	ErrUnknownFormat = errors.New("unknown image format")
	// ErrUnsupportedWrite indicates an encode request for a format without an encoder.
	ErrUnsupportedWrite = errors.New("unsupported write format")
)
