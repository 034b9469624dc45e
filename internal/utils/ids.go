package utils

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewReference returns a short human-readable reference such as "RPT-7K2M9Q".
func NewReference(prefix string) (string, error) {
	id, err := gonanoid.Generate(referenceAlphabet, 6)
	if err != nil {
		return "", err
	}
	return prefix + "-" + id, nil
}

// NewSecretToken returns a URL-safe random token for one-time links.
func NewSecretToken() (string, error) {
	return gonanoid.New(32)
}

// MemberCode renders a member id as the display code shown to members (M0007).
func MemberCode(id uint) string {
	return fmt.Sprintf("M%04d", id)
}
