package auth

import (
	"errors"
	"time"

	"holdem-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const ScopeUser = "user"

type Claims struct {
	SubjectID int64  `json:"subjectId"`
	Username  string `json:"username"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateToken(userID int64, username string) (string, time.Time, error) {
	duration := time.Duration(config.GlobalConfig.JWT.Expire) * time.Hour
	expireAt := time.Now().Add(duration)
	claims := Claims{
		SubjectID: userID,
		Username:  username,
		Scope:     ScopeUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   ScopeUser,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.GlobalConfig.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expireAt, nil
}

func ParseUserToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != ScopeUser {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
