package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenIssuer signs session tokens with HS256. Expiry is deliberately not
// encoded: the session row owns the lifetime, so logout and expiry both take
// effect through the database.
type JWTTokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTTokenIssuer(secret string) *JWTTokenIssuer {
	return &JWTTokenIssuer{secret: []byte(secret), now: time.Now}
}

func (j *JWTTokenIssuer) Issue(userID int64) (string, error) {
	jti, err := GenerateRandomToken()
	if err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		ID:       jti,
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(j.now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWTTokenIssuer) Verify(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return 0, internal.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.ID == "" {
		return 0, internal.ErrInvalidToken
	}
	return userID, nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
