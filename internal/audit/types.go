// Package audit は認証アクティビティ（ログイン・サインアップ・ログアウト）を
// 非同期に記録し、ユーザーごとに直近の履歴を保持します。
package audit

import "time"

// Kind はイベントの種類です。
type Kind string

const (
	KindLoginSucceeded  Kind = "login_succeeded"
	KindLoginFailed     Kind = "login_failed"
	KindSignupSucceeded Kind = "signup_succeeded"
	KindSignupFailed    Kind = "signup_failed"
	KindLogout          Kind = "logout"
)

// Event は認証アクティビティ1件です。
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Email      string    `json:"email"`
	StatusCode int       `json:"statusCode,omitempty"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
