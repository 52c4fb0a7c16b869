// Package secrets stores credentials (restic repository password, database
// password) in an encrypted file keyed by a root-owned passphrase file.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a secret key has no value.
var ErrNotFound = errors.New("secret not found")

// Store is the capability handed to subsystems that need credentials.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ResticKey names the restic repository password secret for a machine.
func ResticKey(machine string) string {
	return "restic-" + machine
}

// MariaDBKey names the database password secret.
const MariaDBKey = "mariadb"

// RandomPassword returns n random bytes hex-encoded, suitable as a generated
// repository password.
func RandomPassword(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("cannot generate password: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Memory is an in-process store for tests.
type Memory struct {
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	delete(m.values, key)
	return nil
}
