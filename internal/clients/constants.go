package clients

import (
	"errors"
	"time"
)

const (
	USER_AGENT   = "newscard/1.0 (+https://github.com/spacesedan/newscard)"
	HTTP_TIMEOUT = 30 * time.Second
	// MAX_ERROR_BODY bounds how much of an upstream error body is kept in errors.
	MAX_ERROR_BODY = 1024
)

// ErrUpstreamStatus is wrapped by every client when a third-party API answers
// with a non-success status.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")
