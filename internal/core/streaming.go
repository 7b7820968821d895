package core

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WrapForStreaming decodes r as UTF-8 on the fly. A leading byte order mark
// (common in files saved by Excel on Windows) is dropped and invalid byte
// sequences become U+FFFD, so encoding/csv always sees valid text.
func WrapForStreaming(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
