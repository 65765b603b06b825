package gotrue

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/authgate/internal/auth"
)

// auth-go は 2xx 以外の応答を "response status code <status>: <body>" のエラーで返す
var statusErrorPattern = regexp.MustCompile(`(?s)^response status code (\d{3})(?::\s?(.*))?$`)

// errorResponse は GoTrue のエラー応答です。バージョンにより形が異なります。
type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// fromLibraryError は auth-go のエラーを *auth.ProviderError に変換します。
// ステータスを含まないエラー（通信・デコード失敗）はそのまま返します。
func fromLibraryError(err error) error {
	m := statusErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	status, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return err
	}
	return decodeError(status, []byte(m[2]))
}

func decodeError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	pErr := &auth.ProviderError{
		Status:  status,
		Code:    firstNonEmpty(er.ErrorCode, er.Error),
		Message: firstNonEmpty(er.Msg, er.Message, er.ErrorDescription),
	}
	if pErr.Message == "" && pErr.Code == "" {
		pErr.Message = strings.TrimSpace(http.StatusText(status))
	}

	switch pErr.Code {
	case "invalid_credentials", "invalid_grant":
		pErr.Kind = auth.ErrInvalidCredentials
	case "email_not_confirmed":
		pErr.Kind = auth.ErrEmailNotConfirmed
	case "user_already_exists", "email_exists":
		pErr.Kind = auth.ErrUserExists
	case "user_not_found":
		pErr.Kind = auth.ErrNotFound
	}
	// 古い GoTrue は error_code を返さず文言だけで区別する
	if pErr.Kind == nil {
		switch strings.ToLower(pErr.Message) {
		case "invalid login credentials":
			pErr.Kind = auth.ErrInvalidCredentials
		case "email not confirmed":
			pErr.Kind = auth.ErrEmailNotConfirmed
		case "user already registered":
			pErr.Kind = auth.ErrUserExists
		}
	}
	return pErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
