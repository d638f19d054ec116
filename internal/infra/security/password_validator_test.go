package security

import (
	"errors"
	"testing"
)

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("pw123456"); err != nil {
		t.Fatalf("expected 8-character password to pass, got %v", err)
	}

	err := validator.Validate("short1")
	if err == nil {
		t.Fatal("expected min_length violation")
	}
	var vErr *PasswordValidationError
	if !errors.As(err, &vErr) || vErr.Code != "min_length" {
		t.Fatalf("expected min_length code, got %v", err)
	}
}

func TestPolicyValidatorWithStrength(t *testing.T) {
	validator := PolicyValidator(8, 3)

	err := validator.Validate("password123")
	if err == nil {
		t.Fatal("expected weak_password violation")
	}
	var vErr *PasswordValidationError
	if !errors.As(err, &vErr) || vErr.Code != "weak_password" {
		t.Fatalf("expected weak_password code, got %v", err)
	}

	if err := validator.Validate("C0mplex!Passphrase#2025"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}

func TestRequireCharacterClassesRule(t *testing.T) {
	validator := NewPasswordValidator(RequireCharacterClassesRule(3))

	if err := validator.Validate("lowercaseonly"); err == nil {
		t.Fatal("expected character_classes violation")
	}
	if err := validator.Validate("Mixed1case"); err != nil {
		t.Fatalf("expected three classes to pass, got %v", err)
	}
}
