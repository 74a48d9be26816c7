// utils/api_key.go
package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// VerifyAPIKey checks a presented shared-secret credential. The key is a
// single static bearer string: anyone holding it gets full access to the
// endpoint it guards, there is no per-caller scoping or rotation. When a
// bcrypt hash is configured the plaintext never has to live in the
// environment; otherwise the comparison is constant-time against the
// configured plaintext.
func VerifyAPIKey(presented, configuredPlain, configuredHash string) bool {
	if presented == "" {
		return false
	}
	if configuredHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(configuredHash), []byte(presented)) == nil
	}
	if configuredPlain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configuredPlain)) == 1
}
