package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は資格情報レコードが存在しない場合に返されます。
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail はストレージ側の一意制約に違反した場合に返されます。
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials はIdPがメールアドレスまたはパスワードを拒否した場合に返されます。
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrEmailNotConfirmed はIdPがメール未確認のアカウントを拒否した場合に返されます。
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrUserExists はIdPが既存ユーザーへのサインアップを拒否した場合に返されます。
	ErrUserExists = errors.New("user already registered")
	// ErrNoSession はIdP上に有効なセッションがない場合に返されます。
	ErrNoSession = errors.New("session not found")
)

// ProviderError はIdPが返したエラー応答です。
// Message はIdPがユーザー向けに用意した文言で、そのまま表示して構いません。
type ProviderError struct {
	Status  int
	Code    string
	Message string
	// Kind は errors.Is で判定できる分類（ErrInvalidCredentials など）です。nil 可。
	Kind error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider error (status %d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider error (status %d): %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// providerMessage はエラーがIdP由来の文言を持っていればそれを返します。
// それ以外（ネットワーク障害やDBエラー）は空文字を返し、呼び出し側で汎用文言に置き換えます。
func providerMessage(err error) string {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Message
	}
	return ""
}
