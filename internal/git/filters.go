package git

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter applies include/exclude glob patterns to snapshot paths.
type PathFilter struct {
	Include []string
	Exclude []string
}

// Apply returns the paths accepted by the filter, preserving order.
func (f PathFilter) Apply(paths []string) ([]string, error) {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return paths, nil
	}

	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// Match checks a single path. Exclude patterns win over include patterns;
// with no include patterns every path not excluded is accepted.
func (f PathFilter) Match(path string) (bool, error) {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.Exclude {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return false, nil
		}
	}

	if len(f.Include) == 0 {
		return true, nil
	}

	for _, pattern := range f.Include {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}

	return false, nil
}
