package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"golang.org/x/crypto/bcrypt"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "regular password",
			password: "Secret1!",
			wantErr:  false,
		},
		{
			name:     "password with special chars",
			password: "p@ssw0rd!@#$%^&*()",
			wantErr:  false,
		},
		{
			name:     "exactly 72 bytes",
			password: strings.Repeat("a", MaxBytes),
			wantErr:  false,
		},
		{
			name:     "too long for bcrypt",
			password: string(make([]byte, 73)),
			wantErr:  true,
		},
		{
			name:     "40 two-byte runes",
			password: strings.Repeat("é", 40),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotHash, err := GetHash(tt.password)

			if (err != nil) != tt.wantErr {
				t.Errorf("GetHash() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if gotHash == "" {
				t.Fatal("GetHash() returned empty hash")
			}
			cost, err := bcrypt.Cost([]byte(gotHash))
			if err != nil {
				t.Fatalf("bcrypt.Cost() error = %v", err)
			}
			if cost != Cost {
				t.Errorf("hash cost = %d, want %d", cost, Cost)
			}
			if err = CompareHash(gotHash, tt.password); err != nil {
				t.Errorf("Generated hash doesn't work with original password: %v", err)
			}
		})
	}
}

func TestCompareHash(t *testing.T) {
	correctHash, err := GetHash("correct_password")
	if err != nil {
		t.Fatalf("Failed to create test hash: %v", err)
	}

	tests := []struct {
		name        string
		hash        string
		password    string
		shouldMatch bool
	}{
		{
			name:        "matching password",
			hash:        correctHash,
			password:    "correct_password",
			shouldMatch: true,
		},
		{
			name:        "wrong password",
			hash:        correctHash,
			password:    "wrong_password",
			shouldMatch: false,
		},
		{
			name:        "empty password",
			hash:        correctHash,
			password:    "",
			shouldMatch: false,
		},
		{
			name:        "not a bcrypt hash",
			hash:        "plain",
			password:    "plain",
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)

			if tt.shouldMatch && err != nil {
				t.Errorf("CompareHash() should succeed, got error: %v", err)
			}
			if !tt.shouldMatch && err == nil {
				t.Error("CompareHash() should fail, but got no error")
			}
		})
	}
}

func TestCompareHash_WrapsMismatch(t *testing.T) {
	hash, err := GetHash("password1")
	if err != nil {
		t.Fatalf("GetHash failed: %v", err)
	}

	err = CompareHash(hash, "password2")
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Errorf("CompareHash() error = %v, want ErrMismatchedHashAndPassword", err)
	}
}

func TestCheckLength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{name: "ascii at limit", password: strings.Repeat("a", 72), want: nil},
		{name: "ascii over limit", password: strings.Repeat("a", 73), want: ErrTooLong},
		{name: "multibyte under limit", password: strings.Repeat("é", 36), want: nil},
		{name: "multibyte over limit", password: strings.Repeat("é", 37), want: ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckLength(tt.password); !errors.Is(err, tt.want) {
				t.Errorf("CheckLength() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGetHash_TooLongWrapsSentinel(t *testing.T) {
	_, err := GetHash(strings.Repeat("é", 40))
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("GetHash() error = %v, want ErrTooLong", err)
	}
}

func TestValidateBytes(t *testing.T) {
	v := validator.New()
	if err := v.RegisterValidation(ValidatorTag, ValidateBytes); err != nil {
		t.Fatalf("RegisterValidation() error = %v", err)
	}

	type form struct {
		Password string `validate:"max=72,bcrypt_bytes"`
	}

	if err := v.Struct(form{Password: strings.Repeat("é", 36)}); err != nil {
		t.Errorf("72 byte password rejected: %v", err)
	}

	err := v.Struct(form{Password: strings.Repeat("é", 40)})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Tag() != ValidatorTag {
		t.Errorf("80 byte password: error = %v, want one %s violation", err, ValidatorTag)
	}
}
