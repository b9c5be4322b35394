package assets

import (
	"fmt"
	"io/fs"
	"strings"
)

// Scheme prefixes every asset path
const Scheme = "ASSET:"

// ParsePath splits ASSET:<pack>/<relative path>. The relative part must be a
// valid io/fs path, so it can never climb out of its pack.
func ParsePath(path string) (pack, rel string, err error) {
	rest, ok := strings.CutPrefix(path, Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	pack, rel, ok = strings.Cut(rest, "/")
	if !ok || pack == "" || rel == "" || !fs.ValidPath(rel) {
		return "", "", fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	return pack, rel, nil
}

// Path builds an asset path
func Path(pack, rel string) string {
	return Scheme + pack + "/" + rel
}
