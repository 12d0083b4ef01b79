package performance

import "errors"

var (
	ErrDirectorNotFound = errors.New("director not found")
	ErrNotDirector      = errors.New("profile is not a director")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrNotApproved      = errors.New("profile is not approved")
)
