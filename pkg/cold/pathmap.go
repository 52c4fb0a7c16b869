package cold

import (
	"fmt"
	"strings"
)

// Mapper translates local absolute paths into remote paths under a storage
// box base directory. Mapping is pure and deterministic so the same local
// file always lands at the same remote location on every target.
type Mapper struct {
	Machine     string
	StripPrefix string
}

// Remote maps localPath under targetBase. The configured strip prefix is
// removed when present; the remainder is namespaced by machine name:
//
//	/home/alice/docs/file.txt -> {base}/{machine}/alice/docs/file.txt
//
// Paths outside the strip prefix keep their full path below the machine
// directory. Callers can detect those with WithinBase and warn.
func (m Mapper) Remote(targetBase, localPath string) string {
	rel := localPath
	if m.StripPrefix != "" && strings.HasPrefix(localPath, m.StripPrefix) {
		rel = localPath[len(m.StripPrefix):]
	}
	rel = strings.TrimLeft(rel, "/")
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(targetBase, "/"), m.Machine, rel)
}

// WithinBase reports whether localPath falls under the strip prefix.
func (m Mapper) WithinBase(localPath string) bool {
	if m.StripPrefix == "" {
		return true
	}
	return localPath == m.StripPrefix || strings.HasPrefix(localPath, strings.TrimRight(m.StripPrefix, "/")+"/")
}
