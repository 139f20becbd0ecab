package archive

import "errors"

// Domain errors reported by the engine. Callers classify with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrNoPages           = errors.New("archive contains no pages")
	ErrPageNotFound      = errors.New("page not found")
	ErrDecode            = errors.New("failed to decode image")
	ErrImageTooLarge     = errors.New("image too large")
	ErrHash              = errors.New("failed to compute content hash")
)

var domainCodes = []struct {
	err  error
	code string
}{
	{ErrUnsupportedFormat, "unsupported_format"},
	{ErrCorruptArchive, "corrupt_archive"},
	{ErrNoPages, "no_pages"},
	{ErrPageNotFound, "page_not_found"},
	{ErrDecode, "decode_failed"},
	{ErrImageTooLarge, "image_too_large"},
	{ErrHash, "hash_failed"},
}

// Code returns the stable code of a domain error, or "" when err is not one.
func Code(err error) string {
	for _, dc := range domainCodes {
		if errors.Is(err, dc.err) {
			return dc.code
		}
	}
	return ""
}

// IsDomain reports whether err was produced by the engine's error taxonomy.
func IsDomain(err error) bool {
	return Code(err) != ""
}
