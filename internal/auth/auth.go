package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrUnauthorized = errors.New("オーナー認証に失敗しました")

// Owner は検証済みのオーナー権限を表す
type Owner struct {
	Subject   string
	ExpiresAt time.Time
}

// Verifier はオーナーのトークンを検証する
// トークンの発行（OTP 等）はこのサービスの外で行う
type Verifier interface {
	Verify(ctx context.Context, token string) (*Owner, error)
}

// JWTVerifier は HS256 で署名された JWT を検証する
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Sign はオーナー用のトークンを発行する（テストと運用スクリプト用）
func (v *JWTVerifier) Sign(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return token, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Owner, error) {
	if len(v.secret) == 0 || token == "" {
		return nil, ErrUnauthorized
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: 有効期限がありません", ErrUnauthorized)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: 発行者が一致しません", ErrUnauthorized)
	}
	return &Owner{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

type ownerKey struct{}

// WithOwner は検証済みのオーナーをコンテキストに格納する
func WithOwner(ctx context.Context, o *Owner) context.Context {
	return context.WithValue(ctx, ownerKey{}, o)
}

// OwnerFrom はコンテキストからオーナーを取り出す
func OwnerFrom(ctx context.Context) (*Owner, bool) {
	o, ok := ctx.Value(ownerKey{}).(*Owner)
	return o, ok && o != nil
}

var _ Verifier = (*JWTVerifier)(nil)
