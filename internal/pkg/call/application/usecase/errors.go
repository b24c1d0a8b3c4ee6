package usecase

import "errors"

var (
	// ErrPersistence wraps storage failures in the call use cases.
	ErrPersistence = errors.New("error persisting call record")

	// ErrRoomProvider wraps failures of the media room backend.
	ErrRoomProvider = errors.New("error provisioning media room")
)
