package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type stubProvider struct {
	session   *ProviderSession
	user      *ProviderUser
	signInErr error
	signUpErr error

	signInCalls  int
	signUpCalls  int
	signOutCalls int
	signOutToken string
}

func (p *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	p.signInCalls++
	return p.session, p.signInErr
}

func (p *stubProvider) SignUp(ctx context.Context, email, password string) (*ProviderUser, error) {
	p.signUpCalls++
	return p.user, p.signUpErr
}

func (p *stubProvider) GetSession(ctx context.Context, accessToken string) (*ProviderSession, error) {
	return p.session, nil
}

func (p *stubProvider) SignOut(ctx context.Context, accessToken string) error {
	p.signOutCalls++
	p.signOutToken = accessToken
	return nil
}

func TestProviderGatewayShortCircuitsEmptyInput(t *testing.T) {
	cases := []struct {
		op              Operation
		email, password string
	}{
		{OperationLogin, "", "secret1"},
		{OperationLogin, "user@example.com", ""},
		{OperationSignup, "", ""},
		{OperationSignup, "user@example.com", ""},
	}
	for _, tc := range cases {
		provider := &stubProvider{}
		out := NewProviderGateway(provider, nil).Execute(context.Background(), tc.op, tc.email, tc.password)
		if out.StatusCode != http.StatusBadRequest || out.Kind != KindInvalidInput {
			t.Fatalf("%s(%q,%q) = %+v, want 400", tc.op, tc.email, tc.password, out)
		}
		if out.Message != MsgCredentialsRequired {
			t.Fatalf("unexpected message: %q", out.Message)
		}
		if provider.signInCalls+provider.signUpCalls != 0 {
			t.Fatalf("provider must not be called, got %d sign-in / %d sign-up", provider.signInCalls, provider.signUpCalls)
		}
	}
}

func TestProviderGatewayLoginSuccess(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{
		AccessToken: "token-1",
		User:        &ProviderUser{ID: "u1", Email: "user@example.com"},
	}}
	out := NewProviderGateway(provider, nil).Execute(context.Background(), OperationLogin, "user@example.com", "secret1")

	if !out.OK() || out.StatusCode != http.StatusOK {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Message != MsgLoginSuccess {
		t.Fatalf("unexpected message: %q", out.Message)
	}
	if out.Identity == nil || out.Identity.Email != "user@example.com" || out.Identity.AccessToken != "token-1" {
		t.Fatalf("unexpected identity: %+v", out.Identity)
	}
}

func TestProviderGatewayLoginWithoutUserEmail(t *testing.T) {
	provider := &stubProvider{session: &ProviderSession{AccessToken: "token-1"}}
	out := NewProviderGateway(provider, nil).Execute(context.Background(), OperationLogin, "user@example.com", "secret1")
	if !out.OK() {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Identity == nil || out.Identity.Email != "" {
		t.Fatalf("identity email should fall back to empty string, got %+v", out.Identity)
	}
}

func TestProviderGatewayLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		session    *ProviderSession
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid credentials",
			err:        &ProviderError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials", Kind: ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgInvalidCredentials,
		},
		{
			name:       "unknown account",
			err:        ErrNotFound,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgInvalidCredentials,
		},
		{
			name:       "no session and no error",
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgInvalidCredentials,
		},
		{
			name:       "email not confirmed",
			err:        &ProviderError{Status: 400, Code: "email_not_confirmed", Message: "Email not confirmed", Kind: ErrEmailNotConfirmed},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Email not confirmed",
		},
		{
			name:       "provider rate limit",
			err:        &ProviderError{Status: 429, Code: "over_request_rate_limit", Message: "Request rate limit reached"},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Request rate limit reached",
		},
		{
			name:       "provider validation error",
			err:        &ProviderError{Status: 422, Code: "validation_failed", Message: "Unable to validate email address: invalid format"},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Unable to validate email address: invalid format",
		},
		{
			name:       "provider error without message",
			err:        &ProviderError{Status: 400},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    MsgInvalidCredentials,
		},
		{
			name:       "network failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    MsgLoginFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{session: tt.session, signInErr: tt.err}
			out := NewProviderGateway(provider, nil).Execute(context.Background(), OperationLogin, "user@example.com", "secret1")
			if out.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", out.StatusCode, tt.wantStatus)
			}
			if out.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", out.Message, tt.wantMsg)
			}
			if out.Identity != nil {
				t.Fatalf("identity must be nil on failure, got %+v", out.Identity)
			}
		})
	}
}

func TestProviderGatewaySignup(t *testing.T) {
	provider := &stubProvider{user: &ProviderUser{ID: "u1", Email: "new@example.com"}}
	out := NewProviderGateway(provider, nil).Execute(context.Background(), OperationSignup, "new@example.com", "secret1")
	if !out.OK() || out.Message != MsgSignupSuccess {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.Identity != nil {
		t.Fatalf("signup must not return an identity, got %+v", out.Identity)
	}
	if provider.signUpCalls != 1 {
		t.Fatalf("signUpCalls = %d", provider.signUpCalls)
	}
}

func TestProviderGatewaySignupFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "already registered",
			err:      &ProviderError{Status: 422, Code: "user_already_exists", Message: "User already registered", Kind: ErrUserExists},
			wantKind: KindConflict,
			wantMsg:  MsgAlreadyRegistered,
		},
		{
			name:     "provider message",
			err:      &ProviderError{Status: 422, Code: "weak_password", Message: "Password should be at least 6 characters."},
			wantKind: KindProviderFailure,
			wantMsg:  "Password should be at least 6 characters.",
		},
		{
			name:     "no message",
			err:      errors.New("unexpected EOF"),
			wantKind: KindProviderFailure,
			wantMsg:  MsgCreateUserFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{signUpErr: tt.err}
			out := NewProviderGateway(provider, nil).Execute(context.Background(), OperationSignup, "new@example.com", "secret1")
			if out.Kind != tt.wantKind || out.Message != tt.wantMsg {
				t.Fatalf("outcome = %+v, want kind %v message %q", out, tt.wantKind, tt.wantMsg)
			}
			if out.OK() {
				t.Fatal("expected failure")
			}
		})
	}
}

func TestProviderGatewayUnsupportedOperation(t *testing.T) {
	provider := &stubProvider{}
	out := NewProviderGateway(provider, nil).Execute(context.Background(), Operation("reset"), "user@example.com", "secret1")
	if out.Kind != KindInvalidInput || out.Message != MsgUnsupportedOperation {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestProviderGatewaySignOut(t *testing.T) {
	provider := &stubProvider{}
	gw := NewProviderGateway(provider, nil)

	if err := gw.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("SignOut with empty token returned error: %v", err)
	}
	if provider.signOutCalls != 0 {
		t.Fatal("empty token must not reach the provider")
	}
	if err := gw.SignOut(context.Background(), "token-1"); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if provider.signOutCalls != 1 || provider.signOutToken != "token-1" {
		t.Fatalf("unexpected sign-out calls: %d token=%q", provider.signOutCalls, provider.signOutToken)
	}
}
