package gotrue

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims は GoTrue が発行するアクセストークンのうち利用する項目です。
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func parseAccessToken(secret []byte, tokenString string, now func() time.Time) (*accessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
