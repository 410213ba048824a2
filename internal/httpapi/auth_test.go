package httpapi

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"marocpos/backend/internal/domain"
)

type fakeUserStore struct {
	users    map[string]domain.UserAccount
	upgraded map[string]string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[string]domain.UserAccount),
		upgraded: make(map[string]string),
	}
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, context.Canceled
	}
	return &user, nil
}

func (f *fakeUserStore) UpdateUserPassword(_ context.Context, username string, password string) error {
	f.upgraded[username] = password
	user := f.users[username]
	user.Password = password
	f.users[username] = user
	return nil
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestLoginAndParseTokenRoundTrip(t *testing.T) {
	users := newFakeUserStore()
	users.users["admin"] = domain.UserAccount{
		Username: "admin",
		Password: mustHash(t, "secret-pass"),
		Role:     "admin",
		Active:   true,
	}
	auth := NewAuthManager("test-secret-key", time.Hour, users)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "Admin ", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != "admin" || resp.AccessToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	users := newFakeUserStore()
	users.users["admin"] = domain.UserAccount{
		Username: "admin", Password: mustHash(t, "secret-pass"), Role: "admin", Active: true,
	}
	signer := NewAuthManager("one-secret", time.Hour, users)
	verifier := NewAuthManager("another-secret", time.Hour, users)

	resp, err := signer.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
	if _, err := verifier.ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	users := newFakeUserStore()
	users.users["cashier"] = domain.UserAccount{
		Username: "cashier", Password: mustHash(t, "pw-123456"), Role: "cashier", Active: false,
	}
	auth := NewAuthManager("test-secret-key", time.Hour, users)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "cashier", Password: "pw-123456"}); err == nil {
		t.Fatalf("expected inactive account to be rejected")
	}
}

func TestLoginUpgradesLegacyPlaintextPassword(t *testing.T) {
	users := newFakeUserStore()
	users.users["legacy"] = domain.UserAccount{
		Username: "legacy", Password: "plain-old-pass", Role: "cashier", Active: true,
	}
	auth := NewAuthManager("test-secret-key", time.Hour, users)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "legacy", Password: "plain-old-pass"}); err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}
	stored, ok := users.upgraded["legacy"]
	if !ok {
		t.Fatalf("expected password upgrade to be written back")
	}
	if !isPasswordHash(stored) {
		t.Fatalf("upgraded password is not a bcrypt hash: %q", stored)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte("plain-old-pass")) != nil {
		t.Fatalf("upgraded hash does not verify against the original password")
	}
}
