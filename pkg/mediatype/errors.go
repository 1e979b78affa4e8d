package mediatype

import "errors"

// Static errors for err113 compliance.
var (
	ErrConfiguration    = errors.New("media type configuration error")
	ErrNoSignature      = errors.New("media type has no signature")
	ErrNoParser         = errors.New("media type has no parser")
	ErrParserNotFound   = errors.New("no media type found for content type")
	ErrUnsupportedValue = errors.New("value cannot be encoded by this media type")
	ErrDecode           = errors.New("cannot decode payload")
	ErrUnknownMediaType = errors.New("unknown media type")
)
