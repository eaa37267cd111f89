package fsutil

import "os"

// CleanDir removes dir and everything below it. A missing dir is not an error.
func CleanDir(dir string) error {
	return os.RemoveAll(dir)
}

// CleanMatching removes every file matched by patterns and returns the
// removed paths.
func CleanMatching(patterns ...string) ([]string, error) {
	matches, err := Expand(patterns...)
	if err != nil {
		return nil, err
	}
	removed := make([]string, 0, len(matches))
	for _, m := range matches {
		if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, m.Path)
	}
	return removed, nil
}
