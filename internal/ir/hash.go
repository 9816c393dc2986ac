package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "bfjit/program/v1"
	DomainOutput  = "bfjit/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash computes the content-addressed identity of a program.
// Two programs hash equal iff their instruction listings are identical
// under the same IR version.
func ProgramHash(p *Program) (string, error) {
	obj := map[string]any{
		"ir_version":   IRVersion,
		"instructions": p.Listing(),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainProgram, canonical), nil
}

// MustProgramHash is like ProgramHash but panics on error.
// Listings only contain strings, so marshaling cannot fail in practice.
func MustProgramHash(p *Program) string {
	h, err := ProgramHash(p)
	if err != nil {
		panic(err)
	}
	return h
}

// OutputHash computes a domain-separated digest of a program's output bytes.
func OutputHash(output []byte) string {
	return hashWithDomain(DomainOutput, output)
}
