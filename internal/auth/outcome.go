// Package auth は認証操作（ログイン／サインアップ）を外部IdPまたは
// アプリ管理のテーブルに委譲し、結果を Outcome に正規化します。
package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Operation は Auth Gateway が実行する操作の種別です。
type Operation string

const (
	OperationLogin  Operation = "login"
	OperationSignup Operation = "signup"
)

// ParseOperation はフォームやJSONの値を Operation に変換します。
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToLower(strings.TrimSpace(s))) {
	case OperationLogin, "":
		return OperationLogin, nil
	case OperationSignup:
		return OperationSignup, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", s)
	}
}

// ユーザーに表示するメッセージ
const (
	MsgCredentialsRequired  = "Email and password are required"
	MsgUnsupportedOperation = "Unsupported operation"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgLoginSuccess         = "Login successful!"
	MsgLoginFailed          = "Something went wrong during login"
	MsgAlreadyRegistered    = "Email is already registered."
	MsgCreateUserFailed     = "Error creating user"
	MsgSignupSuccess        = "Sign Up successful! You can now log in."
)

// Kind は Outcome の種別です。
type Kind int

const (
	KindSuccess Kind = iota
	KindInvalidInput
	KindInvalidCredentials
	KindConflict
	KindProviderFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	case KindProviderFailure:
		return "provider_failure"
	default:
		return "unknown"
	}
}

// Identity は認証に成功したユーザーを表します。
type Identity struct {
	Email string `json:"email"`
	// AccessToken はIdP方式でのみ設定され、レスポンスには含めません。
	AccessToken string `json:"-"`
}

// Outcome は Auth Gateway 呼び出し1回分の正規化された結果です。
// Identity はログイン成功時のみ設定されます。
type Outcome struct {
	Kind       Kind      `json:"-"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Identity   *Identity `json:"user,omitempty"`
	// Detail は内部エラーの原文です。ログ用でありユーザーには見せません。
	Detail string `json:"-"`
}

// OK は成功（200）かどうかを返します。
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Success は成功結果を作ります。
func Success(message string, identity *Identity) Outcome {
	return Outcome{Kind: KindSuccess, StatusCode: http.StatusOK, Message: message, Identity: identity}
}

// InvalidInput は入力不備の結果を作ります。
func InvalidInput(message string) Outcome {
	return Outcome{Kind: KindInvalidInput, StatusCode: http.StatusBadRequest, Message: message}
}

// InvalidCredentials は認証情報不一致の結果を作ります。
func InvalidCredentials(message string) Outcome {
	return Outcome{Kind: KindInvalidCredentials, StatusCode: http.StatusUnauthorized, Message: message}
}

// Conflict は登録済みメールアドレスへのサインアップ結果を作ります。
// 種別は KindConflict ですが、ステータスは認証情報エラーと同じ 401 です。
func Conflict(message string) Outcome {
	return Outcome{Kind: KindConflict, StatusCode: http.StatusUnauthorized, Message: message}
}

// ProviderFailure は想定外の失敗を表す結果を作ります。
// message が空の場合は fallback を表示用メッセージにします。
func ProviderFailure(message, fallback string, cause error) Outcome {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	out := Outcome{Kind: KindProviderFailure, StatusCode: http.StatusInternalServerError, Message: message}
	if cause != nil {
		out.Detail = cause.Error()
	}
	return out
}
