package app

import "errors"

// ErrEmptyMessage is returned when a chat turn arrives without text.
var ErrEmptyMessage = errors.New("message is required")
