package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// The version suffix leaves room for changing the algorithm later.
const (
	DomainTournament = "tiebreak/tournament/v1"
	DomainOperation  = "tiebreak/operation/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TournamentDigest computes a content digest of a tournament snapshot.
// Two snapshots with the same digest render identical standings.
func TournamentDigest(t Tournament) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("TournamentDigest: %w", err)
	}
	return hashWithDomain(DomainTournament, canonical), nil
}

// OperationDigest computes a digest of an operation name and its arguments.
func OperationDigest(op string, args map[string]any) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{"op": op, "args": args})
	if err != nil {
		return "", fmt.Errorf("OperationDigest: %w", err)
	}
	return hashWithDomain(DomainOperation, canonical), nil
}

// MustTournamentDigest is like TournamentDigest but panics on error.
// Use only in tests or when the snapshot is known to be valid.
func MustTournamentDigest(t Tournament) string {
	d, err := TournamentDigest(t)
	if err != nil {
		panic(err)
	}
	return d
}
