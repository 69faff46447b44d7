package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot separates snapshot hashes from any other content hash.
const DomainSnapshot = "adherence/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes the content address of a snapshot payload.
// The hash covers the date and kind so two dates with identical logs never
// collide.
func SnapshotHash(date, kind string, payload []byte) (string, error) {
	envelope := map[string]any{
		"date":    date,
		"kind":    kind,
		"payload": string(payload),
	}
	canonical, err := MarshalCanonical(envelope)
	if err != nil {
		return "", fmt.Errorf("snapshot hash: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}
