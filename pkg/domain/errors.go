package domain

import "errors"

// ErrCacheMiss is returned by a cache when the key holds no value.
var ErrCacheMiss = errors.New("cache miss")

// ErrTranscriptNotFound is returned when a transcript ID cannot be found in the archive.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ErrEmptyQuery is returned when a query is blank after trimming.
var ErrEmptyQuery = errors.New("query is empty")
