package util

import (
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

func parseToken(secret string, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		slog.Warn("トークンの検証に失敗しました", "error", err)
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		slog.Warn("トークンの有効期限が切れています")
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		slog.Warn("クレームの取得に失敗しました")
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PlayerFromToken returns the user id carried by a PLAYER token.
func PlayerFromToken(secret string, tokenString string) (string, error) {
	claims, err := parseToken(secret, tokenString)
	if err != nil {
		return "", err
	}
	if claims["role"] != "PLAYER" {
		slog.Warn("参加者トークンではありません")
		return "", ErrInvalidToken
	}
	user, ok := claims["sub"].(string)
	if !ok || user == "" {
		slog.Warn("参加者トークンにユーザーIDがありません")
		return "", ErrInvalidToken
	}
	return user, nil
}

func IsValidReceiver(secret string, tokenString string) bool {
	claims, err := parseToken(secret, tokenString)
	if err != nil {
		return false
	}
	return claims["role"] == "RECEIVER"
}

// IssueToken signs a token for tests and tooling.
func IssueToken(secret string, role string, subject string) (string, error) {
	claims := jwt.MapClaims{"role": role}
	if subject != "" {
		claims["sub"] = subject
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
