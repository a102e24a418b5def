package models

import "strings"

const hexDigits = "0123456789abcdef"

// Fingerprint identifies file content for grouping purposes.
// Equal fingerprints mean the files are treated as duplicates; this is a
// best-effort identity, not a cryptographic guarantee.
type Fingerprint string

// FingerprintFromDigest renders a digest as colon-delimited hex pairs
func FingerprintFromDigest(digest []byte) Fingerprint {
	if len(digest) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(digest)*3 - 1)
	for i, c := range digest {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return Fingerprint(b.String())
}

// String returns the fingerprint token
func (f Fingerprint) String() string {
	return string(f)
}

// HashFailure records a file whose fingerprint could not be computed.
// Such files receive a unique random fingerprint and never join a group.
type HashFailure struct {
	Path       string `json:"path" msgpack:"path"`
	ErrorClass string `json:"error_class" msgpack:"error_class"`
	Error      string `json:"error" msgpack:"error"`
}
