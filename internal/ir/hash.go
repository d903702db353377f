package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainCollection = "todoflux/collection/v1"
	DomainAction     = "todoflux/action/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CollectionHash computes the content hash of a collection.
// Two collections hash equal iff they hold the same items in the same order,
// compared byte for byte. A nil and an empty collection hash the same.
func CollectionHash(c Collection) (string, error) {
	canonical, err := marshalExact(c)
	if err != nil {
		return "", fmt.Errorf("CollectionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCollection, canonical), nil
}

// ActionHash computes the content hash of an action.
func ActionHash(a Action) (string, error) {
	canonical, err := marshalExact(a)
	if err != nil {
		return "", fmt.Errorf("ActionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// MustCollectionHash is like CollectionHash but panics on error.
// Collections hold only strings, so this cannot fail for well-formed input.
func MustCollectionHash(c Collection) string {
	h, err := CollectionHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
