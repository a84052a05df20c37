package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// KYCDigest hashes the canonical serialization of the KYC fields so only the
// digest, never the raw KYC payload, leaves the backend. json.Marshal sorts
// map keys, which makes the serialization stable across requests.
func KYCDigest(fields map[string]string) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "0x" + hex.EncodeToString(sum[:]), nil
}
