package service

import (
	"ImageHub/model"
	"errors"
	"testing"
)

// TestCreateUser tests user creation and password hashing.
func TestCreateUser(t *testing.T) {
	cleanTables(t)

	user := &model.User{
		UserName: "test_create",
		Password: "123456",
		IsActive: true,
	}
	if err := CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("user ID should not be zero after create")
	}
	if user.Password == "123456" {
		t.Fatal("password should be stored hashed")
	}
}

// TestCheckPassword tests password verification.
func TestCheckPassword(t *testing.T) {
	cleanTables(t)

	user := &model.User{UserName: "pwd_user", Password: "correct_pwd", IsActive: true}
	if err := CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := CheckPassword("pwd_user", "correct_pwd"); err != nil {
		t.Fatalf("CheckPassword should succeed, got err: %v", err)
	}
	if err := CheckPassword("pwd_user", "wrong_pwd"); err == nil {
		t.Fatal("CheckPassword should fail with wrong password")
	}
}

// TestIsExistNotFound tests the missing-user error.
func TestIsExistNotFound(t *testing.T) {
	cleanTables(t)

	if _, err := IsExist("nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestDuplicateUsername tests the uniqueness constraint.
func TestDuplicateUsername(t *testing.T) {
	cleanTables(t)

	first := &model.User{UserName: "dup_user", Password: "123456", IsActive: true}
	if err := CreateUser(first); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	second := &model.User{UserName: "dup_user", Password: "654321", IsActive: true}
	if err := CreateUser(second); err == nil {
		t.Fatal("duplicate username should fail")
	}
}
