// Package credential はフォーム送信前のメールアドレス・パスワード検証を提供します。
package credential

import (
	"regexp"
	"unicode/utf8"
)

// MinPasswordLength はパスワードの最小文字数です。
const MinPasswordLength = 6

const (
	MsgInvalidEmail     = "Please enter a valid email address."
	MsgPasswordTooShort = "Password must be at least 6 characters long."
)

// local-part@domain.tld（空白なし・@は1つ・@の後に.が1つ以上）
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors はフィールドごとの検証エラーです。空文字は「エラーなし」を表します。
type Errors struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// Empty はどのフィールドにもエラーがない場合に true を返します。
func (e Errors) Empty() bool {
	return e.Email == "" && e.Password == ""
}

// ValidEmail はメールアドレスの形式を検証します。
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword はパスワードの長さを検証します。
func ValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// Validate は両フィールドを独立に検証します。
func Validate(email, password string) Errors {
	var errs Errors
	if !ValidEmail(email) {
		errs.Email = MsgInvalidEmail
	}
	if !ValidPassword(password) {
		errs.Password = MsgPasswordTooShort
	}
	return errs
}
