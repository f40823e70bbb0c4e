// Package canceltoken issues and checks the signed links customers use to
// cancel a booking without logging in.
package canceltoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid cancel token")

var enc = base64.RawURLEncoding

type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Generate returns base64url("<bookingID>:<base64url(HMAC-SHA256(bookingID))>").
func (s *Signer) Generate(bookingID string) string {
	return enc.EncodeToString([]byte(bookingID + ":" + enc.EncodeToString(s.sign(bookingID))))
}

// Validate returns the booking id carried by token.
func (s *Signer) Validate(token string) (string, error) {
	raw, err := enc.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return "", ErrInvalidToken
	}
	bookingID, sig, ok := strings.Cut(string(raw), ":")
	if !ok || bookingID == "" || sig == "" {
		return "", ErrInvalidToken
	}
	got, err := enc.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal(got, s.sign(bookingID)) {
		return "", ErrInvalidToken
	}
	return bookingID, nil
}

func (s *Signer) sign(bookingID string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(bookingID))
	return mac.Sum(nil)
}
