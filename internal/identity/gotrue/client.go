// Package gotrue は GoTrue（Supabase Auth）を auth.IdentityProvider として使うためのアダプターです。
// HTTP 呼び出しは supabase-community/auth-go に任せ、エラーの分類とトークンのローカル検証を担います。
package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	authgo "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	"github.com/yourusername/authgate/internal/auth"
)

const defaultTimeout = 10 * time.Second

// Options は Client の追加設定です。
type Options struct {
	// Timeout は1リクエストあたりの上限です。0 の場合は10秒。
	Timeout time.Duration
	// JWTSecret が設定されている場合、GetSession はアクセストークンの署名と期限を
	// 先にローカルで検証し、不正なトークンではIdPに問い合わせません。
	JWTSecret string
	// HTTPClient を差し替える場合に指定します（Timeout より優先）。
	HTTPClient *http.Client
}

// Client は auth-go のクライアントを auth.IdentityProvider に合わせます。
type Client struct {
	baseURL    string
	api        authgo.Client
	jwtSecret  []byte
	httpClient *http.Client
	now        func() time.Time
}

// NewClient は Client を作成します。baseURL はプロジェクトURL（例: https://xyz.supabase.co）です。
func NewClient(baseURL, apiKey string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid identity provider url: %q", baseURL)
	}
	if apiKey == "" {
		return nil, errors.New("identity provider api key is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	base := strings.TrimRight(u.String(), "/")
	c := &Client{
		baseURL:    base,
		api:        authgo.New("", apiKey).WithCustomAuthURL(base + "/auth/v1"),
		httpClient: httpClient,
		now:        time.Now,
	}
	if opts.JWTSecret != "" {
		c.jwtSecret = []byte(opts.JWTSecret)
	}
	return c, nil
}

// withContext は ctx をリクエストに載せる http.Client を使うコピーを返します。
// auth-go のメソッドは context を受け取らないため、ここで取り消しとタイムアウトを伝えます。
func (c *Client) withContext(ctx context.Context, api authgo.Client) authgo.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return api.WithClient(http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: contextTransport{ctx: ctx, base: base},
	})
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(r.WithContext(t.ctx))
}

// SignInWithPassword はパスワードグラントでセッションを取得します。
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*auth.ProviderSession, error) {
	resp, err := c.withContext(ctx, c.api).SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fromLibraryError(err)
	}
	if resp == nil || resp.AccessToken == "" {
		return nil, nil
	}
	return c.toSession(resp.Session), nil
}

// SignUp はユーザーを作成します。
//
// 確認メールが有効なプロジェクトでは、登録済みアドレスに対しても identities が空の
// ダミーユーザーが返るため、これも ErrUserExists として扱います。
func (c *Client) SignUp(ctx context.Context, email, password string) (*auth.ProviderUser, error) {
	resp, err := c.withContext(ctx, c.api).Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fromLibraryError(err)
	}
	if resp == nil {
		return nil, errors.New("empty signup response")
	}

	// 自動確認時はセッションの中にユーザーが入る
	user := resp.User
	if resp.Session.AccessToken != "" {
		user = resp.Session.User
	}
	if user.Identities != nil && len(user.Identities) == 0 {
		return nil, &auth.ProviderError{
			Status:  http.StatusOK,
			Code:    "user_already_exists",
			Message: "User already registered",
			Kind:    auth.ErrUserExists,
		}
	}
	return toUser(user), nil
}

// GetSession はアクセストークンがIdP上でまだ有効かを問い合わせます。
// 無効な場合は auth.ErrNoSession を返します。
func (c *Client) GetSession(ctx context.Context, accessToken string) (*auth.ProviderSession, error) {
	if accessToken == "" {
		return nil, auth.ErrNoSession
	}

	var expiresAt time.Time
	if c.jwtSecret != nil {
		claims, err := parseAccessToken(c.jwtSecret, accessToken, c.now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", auth.ErrNoSession, err)
		}
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	resp, err := c.withContext(ctx, c.api.WithToken(accessToken)).GetUser()
	if err != nil {
		err = fromLibraryError(err)
		var pErr *auth.ProviderError
		if errors.As(err, &pErr) && (pErr.Status == http.StatusUnauthorized || pErr.Status == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %v", auth.ErrNoSession, err)
		}
		return nil, err
	}
	if resp == nil {
		return nil, auth.ErrNoSession
	}

	return &auth.ProviderSession{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        toUser(resp.User),
	}, nil
}

// SignOut はIdP側のセッションを破棄します。既に無効なトークンはエラーにしません。
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	err := c.withContext(ctx, c.api.WithToken(accessToken)).Logout()
	if err == nil {
		return nil
	}
	err = fromLibraryError(err)
	var pErr *auth.ProviderError
	if errors.As(err, &pErr) && (pErr.Status == http.StatusUnauthorized || pErr.Status == http.StatusNotFound) {
		return nil
	}
	return err
}

func (c *Client) toSession(s types.Session) *auth.ProviderSession {
	out := &auth.ProviderSession{AccessToken: s.AccessToken}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(int64(s.ExpiresAt), 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = c.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if u := toUser(s.User); u.ID != "" || u.Email != "" {
		out.User = u
	}
	return out
}

func toUser(u types.User) *auth.ProviderUser {
	user := &auth.ProviderUser{Email: u.Email}
	if u.ID != uuid.Nil {
		user.ID = u.ID.String()
	}
	return user
}
