package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestVerifyAPIKey_Plaintext(t *testing.T) {
	if !VerifyAPIKey("s3cret", "s3cret", "") {
		t.Fatal("matching key rejected")
	}
	if VerifyAPIKey("wrong", "s3cret", "") {
		t.Fatal("wrong key accepted")
	}
	if VerifyAPIKey("", "s3cret", "") {
		t.Fatal("empty presented key accepted")
	}
	if VerifyAPIKey("anything", "", "") {
		t.Fatal("unconfigured key must reject everything")
	}
}

func TestVerifyAPIKey_HashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !VerifyAPIKey("s3cret", "", string(hash)) {
		t.Fatal("matching key rejected against hash")
	}
	if VerifyAPIKey("wrong", "", string(hash)) {
		t.Fatal("wrong key accepted against hash")
	}
	// With a hash configured the plaintext setting is ignored.
	if VerifyAPIKey("plain-value", "plain-value", string(hash)) {
		t.Fatal("plaintext fallback must not apply when a hash is set")
	}
}
