// Package vault seals API credential secrets before they are stored
package vault

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// argon2id parameters for deriving the box key
const (
	kdfTime    = 1
	kdfMemory  = 64 * 1024
	kdfThreads = 4
)

// ErrOpen is returned when a sealed value cannot be decrypted
var ErrOpen = errors.New("vault: cannot open sealed value")

// Vault encrypts and decrypts small secrets with a symmetric key
type Vault struct {
	key [32]byte
}

// New derives the box key from a passphrase and salt with argon2id. An empty
// passphrase or salt is refused. The same pair must be used to open values
// sealed earlier.
func New(passphrase, salt string) (*Vault, error) {
	if passphrase == "" {
		return nil, errors.New("vault: empty key")
	}
	if salt == "" {
		return nil, errors.New("vault: empty salt")
	}
	v := &Vault{}
	copy(v.key[:], argon2.IDKey([]byte(passphrase), []byte(salt), kdfTime, kdfMemory, kdfThreads, uint32(len(v.key))))
	return v, nil
}

// Seal encrypts plaintext. The nonce is prepended to the output.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("vault: read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &v.key), nil
}

// Open decrypts a value produced by Seal
func (v *Vault) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &v.key)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}
