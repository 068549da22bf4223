package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FingerprintFile hashes the resolved media file. Unreadable files fall back
// to the key-derived fingerprint so scans remain total over broken links.
func FingerprintFile(mediaPath, documentPath, locator string) string {
	file, err := os.Open(mediaPath)
	if err != nil {
		return FingerprintKey(documentPath, locator)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return FingerprintKey(documentPath, locator)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// FingerprintKey derives an identity from the reference alone, used when the
// media bytes are unavailable (remote URLs, missing files).
func FingerprintKey(documentPath, locator string) string {
	hasher := sha256.New()
	hasher.Write([]byte(documentPath))
	hasher.Write([]byte{'|'})
	hasher.Write([]byte(locator))
	return hex.EncodeToString(hasher.Sum(nil))
}
