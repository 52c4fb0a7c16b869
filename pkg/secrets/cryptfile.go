package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

// ErrDecrypt is returned when the file cannot be decrypted, usually a wrong
// passphrase or a corrupted file.
var ErrDecrypt = errors.New("cannot decrypt secrets file")

const (
	saltSize  = 16
	nonceSize = 12

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// CryptFile stores secrets as a JSON map encrypted with AES-256-GCM under an
// argon2id-derived key. File layout: salt || nonce || ciphertext. Salt and
// nonce are regenerated on every save.
type CryptFile struct {
	path       string
	passphrase []byte
}

func NewCryptFile(path string, passphrase []byte) *CryptFile {
	return &CryptFile{path: path, passphrase: passphrase}
}

func (c *CryptFile) Get(key string) (string, error) {
	values, err := c.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (c *CryptFile) Set(key, value string) error {
	values, err := c.load()
	if err != nil {
		return err
	}
	values[key] = value
	return c.save(values)
}

func (c *CryptFile) Delete(key string) error {
	values, err := c.load()
	if err != nil {
		return err
	}
	delete(values, key)
	return c.save(values)
}

// load decrypts the file. A missing file is an empty store.
func (c *CryptFile) load() (map[string]string, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read secrets file: %w", err)
	}

	if len(raw) < saltSize+nonceSize {
		return nil, ErrDecrypt
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	ciphertext := raw[saltSize+nonceSize:]

	gcm, err := c.cipher(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}

	var values map[string]string
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, ErrDecrypt
	}
	return values, nil
}

func (c *CryptFile) save(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	gcm, err := c.cipher(salt)
	if err != nil {
		return err
	}

	out := append(salt, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)

	return os.WriteFile(c.path, out, 0600)
}

func (c *CryptFile) cipher(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(c.passphrase, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
