package services

import (
	"errors"
	"testing"

	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/models"
)

func TestAuthenticateAccount(t *testing.T) {
	setupTestDatabase(t)

	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := models.Account{
		Name:         "host",
		Nick:         "The Host",
		PasswordHash: hash,
		Role:         models.AccountRoleAdmin,
	}
	if err := database.C.Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}

	if _, err := AuthenticateAccount("host", "hunter2"); err != nil {
		t.Errorf("valid credentials should authenticate, got %v", err)
	}
	if _, err := AuthenticateAccount("host", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password should fail with ErrInvalidCredentials, got %v", err)
	}
	if _, err := AuthenticateAccount("nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown account should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundtrip(t *testing.T) {
	setupTestDatabase(t)
	admin := makeTestAdmin(t)

	token, err := MintToken(admin)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	parsed, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if parsed.ID != admin.ID {
		t.Errorf("token resolved to account %d, expected %d", parsed.ID, admin.ID)
	}

	if _, err := ParseToken("not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("garbage tokens should fail with ErrInvalidCredentials, got %v", err)
	}
}
