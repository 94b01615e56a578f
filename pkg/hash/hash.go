package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	return SHA256HexBytes([]byte(input))
}

// SHA256HexBytes returns the hex-encoded SHA256 hash of data.
func SHA256HexBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ContentPrefix returns the first prefixLen hex characters of SHA256(data).
// Used to make object keys content-addressed without exposing the full hash.
func ContentPrefix(data []byte, prefixLen int) string {
	full := SHA256HexBytes(data)
	if prefixLen > len(full) || prefixLen <= 0 {
		return full
	}
	return full[:prefixLen]
}

// Short returns a 12-character hash of input for log correlation of PII.
func Short(input string) string {
	return SHA256Hex(input)[:12]
}

// NormalizeTxHash trims and lower-cases a transaction hash and reports
// whether it is 0x followed by 64 hex characters.
func NormalizeTxHash(ref string) (string, bool) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if len(ref) != 66 || !strings.HasPrefix(ref, "0x") {
		return ref, false
	}
	if !isHex(ref[2:]) {
		return ref, false
	}
	return ref, true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
