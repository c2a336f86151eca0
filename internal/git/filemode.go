package git

import "github.com/go-git/go-git/v5/plumbing/filemode"

// entryKind classifies tree entries for snapshot enumeration.
type entryKind int

const (
	entryOther entryKind = iota
	entryFile
	entryDir
)

// classifyEntry maps a tree entry mode to the kind the enumerator acts on.
// Regular, executable, deprecated and symlink entries count as files;
// submodules (gitlinks) are neither.
func classifyEntry(m filemode.FileMode) entryKind {
	switch {
	case m == filemode.Dir:
		return entryDir
	case m.IsFile():
		return entryFile
	default:
		return entryOther
	}
}
