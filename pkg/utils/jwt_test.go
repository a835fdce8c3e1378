package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	org := uuid.MustParse("9a1f4c3e-2b6d-4e8f-a0c1-5d7e9f1a2b3c")

	token, err := GenerateToken("user-1", org, []string{"fleet_manager"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.OrganisationID != org {
		t.Errorf("ValidateToken() = %+v", claims)
	}

	SetSecret("rotated")
	if _, err := ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with another secret")
	}
}
