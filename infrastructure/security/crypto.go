package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"postpilot/infrastructure/logger"
)

// Cipher encrypts platform tokens at rest with AES-256-CBC. The encoded form
// is "ivhex:cipherhex" so each value carries its own IV. With an empty key the
// cipher degrades to passthrough, which keeps local development working but is
// logged loudly at startup.
type Cipher struct {
	key []byte
}

func NewCipher(secret string) *Cipher {
	if secret == "" {
		return &Cipher{}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Cipher{key: sum[:]}
}

func (c *Cipher) Enabled() bool { return len(c.key) == 32 }

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if !c.Enabled() {
		return plaintext, nil
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return fmt.Sprintf("%s:%s", hex.EncodeToString(iv), hex.EncodeToString(out)), nil
}

// Decrypt reverses Encrypt. Values without the "iv:cipher" shape are returned
// as-is so tokens stored before encryption was enabled keep working.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if !c.Enabled() {
		return encoded, nil
	}
	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return encoded, nil
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return encoded, nil
	}
	data, err := hex.DecodeString(parts[1])
	if err != nil {
		return encoded, nil
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errors.New("ciphertext is not block aligned")
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to decrypt token")
		return "", err
	}

	return string(plain), nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	pad := make([]byte, n)
	for i := range pad {
		pad[i] = byte(n)
	}
	return append(b, pad...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
