package auth

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseOperation(t *testing.T) {
	cases := map[string]Operation{
		"":         OperationLogin,
		"login":    OperationLogin,
		" Signup ": OperationSignup,
	}
	for in, want := range cases {
		got, err := ParseOperation(in)
		if err != nil || got != want {
			t.Fatalf("ParseOperation(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOperation("delete"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestProviderFailureFallback(t *testing.T) {
	out := ProviderFailure("  ", MsgLoginFailed, errors.New("boom"))
	if out.Message != MsgLoginFailed || out.Detail != "boom" || out.StatusCode != 500 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	out = ProviderFailure("Service unavailable", MsgLoginFailed, nil)
	if out.Message != "Service unavailable" || out.Detail != "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestOutcomeStatusCodes(t *testing.T) {
	cases := map[Kind]Outcome{
		KindSuccess:            Success(MsgSignupSuccess, nil),
		KindInvalidInput:       InvalidInput(MsgCredentialsRequired),
		KindInvalidCredentials: InvalidCredentials(MsgInvalidCredentials),
		KindConflict:           Conflict(MsgAlreadyRegistered),
		KindProviderFailure:    ProviderFailure("", MsgLoginFailed, nil),
	}
	want := map[Kind]int{
		KindSuccess:            200,
		KindInvalidInput:       400,
		KindInvalidCredentials: 401,
		KindConflict:           401,
		KindProviderFailure:    500,
	}
	for kind, out := range cases {
		if out.Kind != kind || out.StatusCode != want[kind] {
			t.Fatalf("%v: got kind %v status %d, want %d", kind, out.Kind, out.StatusCode, want[kind])
		}
	}
}

func TestOutcomeJSONHidesInternals(t *testing.T) {
	out := Success(MsgLoginSuccess, &Identity{Email: "user@example.com", AccessToken: "secret-token"})
	out.Detail = "internal"
	body, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["statusCode"].(float64) != 200 || payload["message"] != MsgLoginSuccess {
		t.Fatalf("unexpected payload: %s", body)
	}
	user := payload["user"].(map[string]any)
	if user["email"] != "user@example.com" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, ok := user["AccessToken"]; ok {
		t.Fatalf("access token leaked: %s", body)
	}
	if _, ok := payload["Detail"]; ok {
		t.Fatalf("detail leaked: %s", body)
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	err := error(&ProviderError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials", Kind: ErrInvalidCredentials})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("expected errors.Is to match the kind")
	}
	if providerMessage(err) != "Invalid login credentials" {
		t.Fatalf("providerMessage = %q", providerMessage(err))
	}
	if providerMessage(errors.New("plain")) != "" {
		t.Fatal("plain errors carry no provider message")
	}
}
