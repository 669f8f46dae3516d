package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotReady             = errors.New("planner is still loading")
	ErrTeamMemberNotFound   = errors.New("team member not found")
	ErrReleaseNotFound      = errors.New("release not found")
	ErrSprintNotFound       = errors.New("sprint not found")
	ErrSprintMemberNotFound = errors.New("sprint member not found")
	ErrNoCurrentSelection   = errors.New("nothing selected")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
