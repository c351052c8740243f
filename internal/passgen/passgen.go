package passgen

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// DefaultLength is the length of generated passwords.
const DefaultLength = 12

// Charset is letters, digits and the symbols !@#$%^&*.
var Charset = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*")

// ErrCharset is returned for charsets shorter than 2 or longer than 256 bytes.
var ErrCharset = errors.New("passgen: charset must hold 2 to 256 characters")

const byteRange = 256

// New returns a password of DefaultLength drawn from Charset.
func New() (string, error) {
	return NewLen(DefaultLength)
}

// NewLen returns a password of length characters drawn from Charset.
func NewLen(length int) (string, error) {
	return NewLenChars(length, Charset)
}

// NewLenChars returns a string of length characters drawn uniformly from chars.
func NewLenChars(length int, chars []byte) (string, error) {
	if length <= 0 {
		return "", nil
	}

	clen := len(chars)
	if clen < 2 || clen > byteRange {
		return "", ErrCharset
	}

	// bytes above limit are rejected to avoid modulo bias
	limit := byteRange - (byteRange % clen)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+8)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("passgen: reading random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%clen])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
