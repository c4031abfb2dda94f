// Package cryptoutil implements C1: hashing (SHA-384), RSA-2048 keypair
// generation and PKCS#1-v1.5 signing/verification. Base64 encoding of
// signatures is done by internal/txengine, not here. The
// shapes (PrivateKey/PublicKey wrapper types, Sign/Verify methods, PEM
// import/export) mirror the teacher's pkg/keys package; the underlying
// primitive is RSA+SHA384 per the wire contract, not secp256k1, so it is
// built directly on Go's standard crypto/rsa rather than a third-party
// curve library (see DESIGN.md for why).
package cryptoutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const keyBits = 2048

// PrivateKey wraps an RSA-2048 private key.
type PrivateKey struct {
	key *rsa.PrivateKey
}

// PublicKey wraps an RSA-2048 public key, identified by its PEM string.
type PublicKey struct {
	key *rsa.PublicKey
	pem string
}

// GenerateKeyPair generates a fresh RSA-2048 keypair.
func GenerateKeyPair() (*PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PublicKey derives the public key from the private key.
func (pk *PrivateKey) PublicKey() (*PublicKey, error) {
	der, err := x509.MarshalPKIXPublicKey(&pk.key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return &PublicKey{key: &pk.key.PublicKey, pem: pemStr}, nil
}

// Sign signs a SHA-384 digest with PKCS#1-v1.5.
func (pk *PrivateKey) Sign(digest [48]byte) ([]byte, error) {
	sig, err := rsa.SignPKCS1v15(rand.Reader, pk.key, shaHash(), digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// PEM exports the private key in PKCS#1 PEM form. Nothing in the node
// persists or transmits it; the keypair lives in memory only.
func (pk *PrivateKey) PEM() string {
	der := x509.MarshalPKCS1PrivateKey(pk.key)
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}))
}

// ParsePrivateKeyPEM parses a PKCS#1 PEM-encoded RSA private key.
func ParsePrivateKeyPEM(s string) (*PrivateKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM block")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// String returns the public key's PEM encoding — this is the participant's
// identity on the wire (spec §3).
func (pub *PublicKey) String() string {
	return pub.pem
}

// ParsePublicKeyPEM parses a PEM-encoded PKIX public key. Returns an error
// for malformed keys or keys that are not RSA.
func ParsePublicKeyPEM(s string) (*PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM block")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA")
	}
	return &PublicKey{key: rsaPub, pem: s}, nil
}

// Verify verifies a PKCS#1-v1.5 signature over a SHA-384 digest.
func (pub *PublicKey) Verify(digest [48]byte, signature []byte) bool {
	if pub == nil || pub.key == nil {
		return false
	}
	return rsa.VerifyPKCS1v15(pub.key, shaHash(), digest[:], signature) == nil
}
