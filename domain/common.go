package domain

import (
	"errors"
)

var (
	MessageFailedProcessRequest = "failed to process request"

	ErrParseUUID        = errors.New("failed to parse UUID")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// SnapshotSource reports which phase of a two-phase read produced the list a
// store currently holds.
type SnapshotSource string

const (
	SourceNone          SnapshotSource = "none"
	SourceCache         SnapshotSource = "cache"
	SourceFresh         SnapshotSource = "fresh"
	SourceStaleFallback SnapshotSource = "stale_fallback"
)
