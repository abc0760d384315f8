package journal

import (
	"crypto/sha256"
	"encoding/hex"
)

// domainAction is the domain prefix for payload hashes. The version suffix
// enables future algorithm migration without ambiguity against old rows.
const domainAction = "datasync/action/v1"

// PayloadHash computes the content hash of one journaled payload:
// SHA256(domain + 0x00 + canonical). The null separator prevents
// domain/data boundary ambiguity.
func PayloadHash(canonical []byte) string {
	h := sha256.New()
	h.Write([]byte(domainAction))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}
