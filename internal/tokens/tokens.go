package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID string
	Email  string
}

// Generate creates a signed HS256 session token for the user. The token is
// stateless: its validity is only a function of the signature and expiry.
func Generate(secret, userID, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// Verify checks signature and expiry and returns the embedded identity.
// Tampered, mis-signed, malformed and expired tokens all fail.
func Verify(secret, raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	userID, _ := mc["userId"].(string)
	email, _ := mc["email"].(string)
	if userID == "" {
		return nil, errors.New("token missing userId claim")
	}
	return &Claims{UserID: userID, Email: email}, nil
}

// HS256Verifier adapts Verify to the middleware Verifier interface.
type HS256Verifier struct {
	Secret string
}

func (v HS256Verifier) VerifyToken(raw string) (*Claims, error) {
	return Verify(v.Secret, raw)
}
