package utils

import (
	"strings"

	"github.com/google/uuid"
)

// HexToken returns a random lowercase hex string of length n.
func HexToken(n int) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	for len(token) < n {
		token += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return token[:n]
}

// GetToken returns a random token.
func GetToken() string {
	return uuid.NewString()
}
