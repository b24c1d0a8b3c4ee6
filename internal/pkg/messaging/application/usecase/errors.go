package usecase

import (
	"errors"
	"fmt"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case.
var ErrPersistence = fmt.Errorf("messaging use case persistence error")

// ErrNotParticipant rejects writes from users outside the conversation pair.
var ErrNotParticipant = errors.New("messaging: sender is not a participant in the conversation")
