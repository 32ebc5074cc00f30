package engine

import (
	"errors"
	"fmt"
)

// Validation errors returned when a tournament is created.
var (
	ErrNoPlayers         = errors.New("tournament needs at least one player")
	ErrInvalidPlayerName = errors.New("player name must not be empty")
	ErrInvalidName       = errors.New("tournament name must not be empty")
	ErrInvalidConfig     = errors.New("invalid scoring configuration")
)

// PairingErrorCode categorizes pairing assertion failures.
type PairingErrorCode string

const (
	// ErrCodeDuplicatePlayer indicates the same player ID appears twice.
	ErrCodeDuplicatePlayer PairingErrorCode = "DUPLICATE_PLAYER"

	// ErrCodeNoCandidate indicates the scan found nobody to pair with.
	ErrCodeNoCandidate PairingErrorCode = "NO_CANDIDATE"
)

// PairingError is raised (as a panic value) when pairing input is
// internally inconsistent. It signals a programming error, never a
// user-facing condition, so it is not returned as an error value.
type PairingError struct {
	Code     PairingErrorCode
	PlayerID string
	Round    int
}

// Error implements the error interface.
func (e *PairingError) Error() string {
	return fmt.Sprintf("%s: cannot pair player %q for round %d", e.Code, e.PlayerID, e.Round)
}

// IsPairingError reports whether err is a PairingError.
// Uses errors.As to handle wrapped errors.
func IsPairingError(err error) bool {
	var pe *PairingError
	return errors.As(err, &pe)
}
