package security

import (
	"testing"
	"time"
)

func TestVerifier_ValidateAccess(t *testing.T) {
	v, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}
	token, err := SignTestAccessToken("u1", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}
	userID, err := v.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}
}

func TestVerifier_ValidateAccess_Expired(t *testing.T) {
	v, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}
	token, err := SignTestAccessToken("u1", -time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}
	if _, err := v.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifier_ValidateAccess_Malformed(t *testing.T) {
	v, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := v.ValidateAccess(token); err != ErrInvalidToken {
			t.Errorf("ValidateAccess(%q): err = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifier_ValidateAccess_WrongIssuer(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	v := NewVerifier(pub, "other-issuer", testAudience)
	token, err := SignTestAccessToken("u1", time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}
	if _, err := v.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("wrong issuer: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifier_ValidateAccess_WrongAudience(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	v := NewVerifier(pub, testIssuer, "other-audience")
	token, err := SignTestAccessToken("u1", time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}
	if _, err := v.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("wrong audience: err = %v, want ErrInvalidToken", err)
	}
}
