package tuple

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with old digests.
const (
	DomainEvent = "naiveq22/event/v1"
	DomainView  = "naiveq22/view/v1"
)

// HashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null separator keeps domain and data unambiguous.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID is the content hash of an event's canonical form. Two events with
// the same route and tuple value share an ID.
func EventID(ev Event) (string, error) {
	canonical, err := MarshalCanonical(EventObject(ev))
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainEvent, canonical), nil
}
