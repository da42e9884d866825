package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"owner@acme.com", true},
		{"sales.team@acme.co.in", true},
		{"ops+alerts@voicedesk.test", true},
		{"agent7@calls.acme.com", true},
		{"dev@localhost", true},

		{"", false},
		{"  ", false},
		{"acme.com", false},
		{"owner@", false},
		{"@acme.com", false},
		{".owner@acme.com", false},
		{"owner.@acme.com", false},
		{"sales..team@acme.com", false},
		{"owner@acme..com", false},
		{"Acme Owner <owner@acme.com>", false},
		{"owner @acme.com", false},
		{"owner@acme .com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidate_EmailRule(t *testing.T) {
	type humanAgentInput struct {
		Email string `validate:"required,email" label:"Email"`
	}

	if res := Validate(humanAgentInput{Email: "agent@acme.com"}); res.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.All())
	}

	res := Validate(humanAgentInput{Email: "agent at acme"})
	if got := res.First(); got != "A valid email address is required." {
		t.Errorf("First() = %q", got)
	}
	if res.Errors[0].Field != "Email" {
		t.Errorf("Field = %q", res.Errors[0].Field)
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if res := Validate(nil); res.HasErrors() {
		t.Errorf("nil should validate clean, got %v", res.All())
	}
	var r *Result
	if r.HasErrors() || r.First() != "" || r.Messages() != nil {
		t.Error("nil Result should report no errors")
	}
}
