package utils

import (
	"testing"

	"vermux/models"
)

func TestSignAndVerifyCallback(t *testing.T) {
	secret := []byte("test-secret-key-for-callbacks-32")
	claims := &models.CallbackClaims{
		Issuer:    "vermux",
		Token:     "tok789",
		IssuedAt:  1756000000,
		Status:    "completed",
		ElapsedMS: 4200,
		SizeBytes: 2097152,
	}

	signed, err := SignCallback(claims, secret)
	if err != nil {
		t.Fatalf("SignCallback: %v", err)
	}

	got, err := VerifyCallback(signed, secret)
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if got.Token != claims.Token || got.Status != claims.Status {
		t.Errorf("claims round trip mismatch: %+v", got)
	}
	if got.ElapsedMS != claims.ElapsedMS || got.SizeBytes != claims.SizeBytes {
		t.Errorf("numeric claims mismatch: %+v", got)
	}
}

func TestVerifyCallbackWrongSecret(t *testing.T) {
	claims := &models.CallbackClaims{Issuer: "vermux", Token: "tok", Status: "failed"}

	signed, err := SignCallback(claims, []byte("right-secret-right-secret-32byte"))
	if err != nil {
		t.Fatalf("SignCallback: %v", err)
	}
	if _, err := VerifyCallback(signed, []byte("wrong-secret-wrong-secret-32byte")); err == nil {
		t.Error("verification succeeded with the wrong secret")
	}
}

func TestSignCallbackRequiresSecret(t *testing.T) {
	if _, err := SignCallback(&models.CallbackClaims{}, nil); err == nil {
		t.Error("signing without a secret must fail")
	}
	if _, err := SignCallback(nil, []byte("secret")); err == nil {
		t.Error("signing nil claims must fail")
	}
}

func TestVerifyCallbackRejectsGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := VerifyCallback(tok, []byte("secret")); err == nil {
			t.Errorf("garbage token %q verified", tok)
		}
	}
}
