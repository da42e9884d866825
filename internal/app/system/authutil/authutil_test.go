package authutil

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"minimum length", "s3cr3t", nil},
		{"passphrase", "acme outbound dialer", nil},
		{"at max length", strings.Repeat("v", MaxPasswordLength), nil},
		{"empty", "", ErrPasswordTooShort},
		{"too short", "abc12", ErrPasswordTooShort},
		{"too long", strings.Repeat("v", MaxPasswordLength+1), ErrPasswordTooLong},
		{"common", "password", ErrPasswordCommon},
		{"common any case", "LetMeIn", ErrPasswordCommon},
		{"common digits", "123456", ErrPasswordCommon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.pw); !errors.Is(err, tt.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, err, tt.want)
			}
		})
	}
}

func TestPasswordRules(t *testing.T) {
	rules := PasswordRules()
	if !strings.Contains(rules, "6 to 128") {
		t.Errorf("PasswordRules() = %q, want the length bounds", rules)
	}
}

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("campaign-owner-pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "campaign-owner-pw" || !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected hash %q", hash)
	}

	again, _ := HashPassword("campaign-owner-pw")
	if again == hash {
		t.Error("hashes of the same password should be salted differently")
	}

	tests := []struct {
		name string
		pw   string
		hash string
		want bool
	}{
		{"match", "campaign-owner-pw", hash, true},
		{"second hash matches too", "campaign-owner-pw", again, true},
		{"wrong password", "campaign-owner-PW", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "campaign-owner-pw", "", false},
		{"malformed hash", "campaign-owner-pw", "not-a-bcrypt-hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.pw, tt.hash); got != tt.want {
				t.Errorf("CheckPassword = %v, want %v", got, tt.want)
			}
		})
	}
}
