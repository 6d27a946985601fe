package workflow

import "errors"

var (
	ErrRecordNotFound = errors.New("workflow record not found")
)
