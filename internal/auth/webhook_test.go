package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyCorrectToken(t *testing.T) {
	token, err := GenerateWebhookToken()
	if err != nil {
		t.Fatalf("GenerateWebhookToken() error: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash has unexpected format: %s", hash)
	}

	ok, err := VerifyToken(token, hash)
	if err != nil {
		t.Fatalf("VerifyToken() error: %v", err)
	}
	if !ok {
		t.Error("VerifyToken() returned false for correct token")
	}
}

func TestRejectWrongToken(t *testing.T) {
	hash, err := HashToken("real-token")
	if err != nil {
		t.Fatalf("HashToken() error: %v", err)
	}

	ok, err := VerifyToken("wrong-token", hash)
	if err != nil {
		t.Fatalf("VerifyToken() error: %v", err)
	}
	if ok {
		t.Error("VerifyToken() returned true for wrong token")
	}
}

func TestSameTokenDifferentSalts(t *testing.T) {
	h1, err := HashToken("same-token")
	if err != nil {
		t.Fatalf("HashToken() error: %v", err)
	}
	h2, err := HashToken("same-token")
	if err != nil {
		t.Fatalf("HashToken() error: %v", err)
	}
	if h1 == h2 {
		t.Error("same token produced identical hashes (salts should differ)")
	}

	// Both should still verify
	ok1, _ := VerifyToken("same-token", h1)
	ok2, _ := VerifyToken("same-token", h2)
	if !ok1 || !ok2 {
		t.Error("same token should verify against both hashes")
	}
}
