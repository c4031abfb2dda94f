package cryptoutil

import (
	"crypto"
	"crypto/sha512"
	"encoding/hex"
)

// Hash384 computes SHA-384 over data, as required by spec §3 for both
// transaction ids and block hashes.
func Hash384(data []byte) [48]byte {
	return sha512.Sum384(data)
}

// HashHex returns the lowercase hex encoding of a SHA-384 digest — the wire
// form of transaction ids and block hashes (spec §6 "Wire invariants").
func HashHex(data []byte) string {
	sum := Hash384(data)
	return hex.EncodeToString(sum[:])
}

// shaHash identifies SHA-384 for rsa.SignPKCS1v15/VerifyPKCS1v15.
func shaHash() crypto.Hash {
	return crypto.SHA384
}

// HasLeadingHexZeros reports whether the hex encoding of hash begins with
// the given number of '0' characters — the PoW predicate (spec §3, §4.5).
func HasLeadingHexZeros(hash [48]byte, zeros int) bool {
	hexStr := hex.EncodeToString(hash[:])
	if zeros > len(hexStr) {
		return false
	}
	for i := 0; i < zeros; i++ {
		if hexStr[i] != '0' {
			return false
		}
	}
	return true
}
