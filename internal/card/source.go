package card

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind identifies where the source text came from.
type SourceKind int

const (
	SourcePaste SourceKind = iota
	SourceFile
	SourceURL
)

// pastedSourceName is used for text with no file or URL behind it.
const pastedSourceName = "pasted_text"

// SourceName derives a human-readable source name for display and tagging.
// Files use their base name, URLs use "host/last-segment" (host alone when
// the path is empty), and pasted text uses a fixed name.
func SourceName(source string, kind SourceKind) string {
	switch kind {
	case SourceFile:
		return filepath.Base(source)
	case SourceURL:
		u, err := url.Parse(source)
		if err != nil || u.Host == "" {
			return source
		}
		p := strings.Trim(u.Path, "/")
		if p == "" {
			return u.Host
		}
		segments := strings.Split(p, "/")
		return u.Host + "/" + segments[len(segments)-1]
	default:
		return pastedSourceName
	}
}
