package models

import (
	"strings"
	"testing"
)

func TestUserPasswordHashing(t *testing.T) {
	u := &User{Username: "alice", Email: "alice@example.com", Password: "password123"}

	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave: %v", err)
	}
	if u.Password == "password123" {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(u.Password, "$2") {
		t.Errorf("password %q is not a bcrypt hash", u.Password)
	}

	hashed := u.Password
	if err := u.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave on saved user: %v", err)
	}
	if u.Password != hashed {
		t.Error("already-hashed password was re-hashed")
	}

	if !u.CheckPassword("password123") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
}
