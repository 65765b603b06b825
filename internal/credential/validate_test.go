package credential

import "testing"

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	cases := []struct {
		email    string
		password string
	}{
		{"user@example.com", "secret"},
		{"first.last+tag@sub.example.co.jp", "correct horse battery staple"},
		{"a@b.c", "123456"},
		{"ユーザー@例え.jp", "パスワード六字"},
	}
	for _, tc := range cases {
		if errs := Validate(tc.email, tc.password); !errs.Empty() {
			t.Fatalf("Validate(%q, %q) = %+v, want no errors", tc.email, tc.password, errs)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	invalid := []string{
		"",
		"plainaddress",
		"user@example",
		"user@@example.com",
		"us er@example.com",
		"user@exa mple.com",
		"@example.com",
		"user@.com.",
	}
	for _, email := range invalid {
		errs := Validate(email, "long-enough")
		if errs.Email != MsgInvalidEmail {
			t.Fatalf("Validate(%q) email error = %q, want %q", email, errs.Email, MsgInvalidEmail)
		}
		if errs.Password != "" {
			t.Fatalf("unexpected password error for %q: %q", email, errs.Password)
		}
	}
}

func TestValidatePasswordLength(t *testing.T) {
	if errs := Validate("user@example.com", "12345"); errs.Password != MsgPasswordTooShort {
		t.Fatalf("expected password error, got %+v", errs)
	}
	// 文字数はバイト数ではなくルーン数で数える
	if errs := Validate("user@example.com", "ぱすわーど"); errs.Password != MsgPasswordTooShort {
		t.Fatalf("5 runes should be too short, got %+v", errs)
	}
	if errs := Validate("user@example.com", "123456"); !errs.Empty() {
		t.Fatalf("6 characters should pass, got %+v", errs)
	}
}

func TestValidateReportsBothFields(t *testing.T) {
	errs := Validate("nope", "123")
	if errs.Email == "" || errs.Password == "" {
		t.Fatalf("expected both errors, got %+v", errs)
	}
	if errs.Empty() {
		t.Fatal("Empty() should be false")
	}
}
