package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost は TableGateway が受け付ける最小コストです。
const MinBcryptCost = 10

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare は一致で (true, nil)、不一致で (false, nil)、ハッシュ不正などで error を返します。
	Compare(hash, password string) (bool, error)
}

// BcryptHasher は bcrypt による PasswordHasher です。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は BcryptHasher を作成します。cost は MinBcryptCost 以上に切り上げます。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost は実際に使用するコストを返します。
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash はソルト付きの bcrypt ハッシュを生成します。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare はパスワードとハッシュを照合します。
func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
