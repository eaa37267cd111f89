package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
}

// Validate checks the settings for the errors that would otherwise surface
// at first use. It is run once at startup.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Project) == "" {
		return invalidf("project name is required")
	}
	if strings.ContainsAny(s.Project, `/\`) || s.Project == "." || s.Project == ".." {
		return invalidf("project name %q must be a single path segment", s.Project)
	}
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return invalidf("server port %d is out of range", s.Server.Port)
	}
	for _, group := range []struct {
		name  string
		globs []string
	}{
		{"assets", s.Assets},
		{"scripts", s.Scripts},
		{"styles", s.Styles},
	} {
		for i, g := range group.globs {
			if strings.TrimSpace(g) == "" {
				return invalidf("%s[%d] is empty", group.name, i)
			}
		}
	}
	if u := s.Archive.Upload; u != nil {
		if strings.TrimSpace(u.Endpoint) == "" {
			return invalidf("archive upload endpoint is required")
		}
		if strings.TrimSpace(u.Bucket) == "" {
			return invalidf("archive upload bucket is required")
		}
	}
	return nil
}
