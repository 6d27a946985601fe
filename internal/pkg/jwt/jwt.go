package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies the bearer tokens issued by the identity platform. The
// engine never issues tokens itself; it only needs the verifier and the
// claims (user_id, role) carried on incoming requests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	Decode(tokenString string) (userID string, role string, err error)
}

type JWTService struct {
	secretKey string
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		secretKey: secretKey,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// Decode validates a raw token string and extracts the identity claims.
func (j *JWTService) Decode(tokenString string) (userID string, role string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", "", err
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", "", jwt.ErrInvalidJWT()
	}
	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", "", jwt.ErrInvalidJWT()
	}

	if roleVal, ok := token.Get("role"); ok {
		role, _ = roleVal.(string)
	}

	return userID, role, nil
}
