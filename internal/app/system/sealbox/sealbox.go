// Package sealbox encrypts client API keys at rest with NaCl secretbox.
package sealbox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceLen = 24

var (
	ErrKeyLength = errors.New("sealing key must be exactly 32 bytes")
	ErrOpen      = errors.New("sealed value could not be opened")
)

// Box seals and opens values with one key.
type Box struct {
	key [32]byte
}

// New uses secret as the key; it must be 32 bytes.
func New(secret string) (*Box, error) {
	if len(secret) != 32 {
		return nil, ErrKeyLength
	}
	b := &Box{}
	copy(b.key[:], secret)
	return b, nil
}

// Derive builds a key from an arbitrary secret. Used when no dedicated key is
// configured.
func Derive(secret string) *Box {
	return &Box{key: sha256.Sum256([]byte("voicedesk/apikeys:" + secret))}
}

// Seal returns nonce||ciphertext.
func (b *Box) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceLen+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])
	out, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}

// Hint is the last four characters of key, for display.
func Hint(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}
