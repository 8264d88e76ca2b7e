package server

import "errors"

// Wraps failures in daemon setup and request handling.
var ErrServer = errors.New("server error")
