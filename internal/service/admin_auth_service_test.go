package service

import (
	"testing"

	"rentacar/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdminRepo struct {
	admins map[string]repository.Admin
}

func (f *fakeAdminRepo) GetByEmail(email string) (*repository.Admin, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

func (f *fakeAdminRepo) CreateAdmin(email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	f.admins[email] = repository.Admin{ID: len(f.admins) + 1, Email: email, PasswordHash: string(hashed)}
	return nil
}

func newFakeAdminRepo(t *testing.T, email, password string) *fakeAdminRepo {
	t.Helper()
	repo := &fakeAdminRepo{admins: map[string]repository.Admin{}}
	if err := repo.CreateAdmin(email, password); err != nil {
		t.Fatalf("Failed to seed admin: %v", err)
	}
	return repo
}

func TestAdminLogin_MintsVerifiableToken(t *testing.T) {
	const secret = "test-secret"
	repo := newFakeAdminRepo(t, "admin@rentacar.kr", "hunter22")
	svc := NewAdminAuthService(repo, secret)

	tokenString, err := svc.Login("admin@rentacar.kr", "hunter22")
	if err != nil {
		t.Fatalf("Expected login to succeed, got: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("Expected the minted token to verify with the configured secret, got: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["email"] != "admin@rentacar.kr" {
		t.Errorf("Expected the email claim to be set, got %v", token.Claims)
	}
}

func TestAdminLogin_RejectsBadCredentials(t *testing.T) {
	repo := newFakeAdminRepo(t, "admin@rentacar.kr", "hunter22")
	svc := NewAdminAuthService(repo, "test-secret")

	if _, err := svc.Login("admin@rentacar.kr", "wrong"); err == nil {
		t.Error("Expected a wrong password to be rejected")
	}
	if _, err := svc.Login("nobody@rentacar.kr", "hunter22"); err == nil {
		t.Error("Expected an unknown email to be rejected")
	}
}

func TestAdminLogin_FailsWithoutSecret(t *testing.T) {
	repo := newFakeAdminRepo(t, "admin@rentacar.kr", "hunter22")
	svc := NewAdminAuthService(repo, "")

	if _, err := svc.Login("admin@rentacar.kr", "hunter22"); err == nil {
		t.Error("Expected login to fail when no signing secret is configured")
	}
}
