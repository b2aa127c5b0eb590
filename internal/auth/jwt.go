package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a token.
type Claims struct {
	Sub   string
	Email string
	Name  string
	Exp   int64
	Iat   int64
}

var ErrInvalidToken = errors.New("invalid token")

// tokenClaims — wire shape of the JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Sign signs the claims with HS256. Iat/Exp default to now and now+24h.
func Sign(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}

	now := time.Now().UTC()
	iat := now
	if claims.Iat != 0 {
		iat = time.Unix(claims.Iat, 0).UTC()
	}
	exp := now.Add(24 * time.Hour)
	if claims.Exp != 0 {
		exp = time.Unix(claims.Exp, 0).UTC()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Sub,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: claims.Email,
		Name:  claims.Name,
	})
	return token.SignedString(secret)
}

// Verify checks the signature and expiry and returns the claims. Only HS256
// is accepted; alg-substitution tokens fail the method check.
func Verify(token string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, errors.New("jwt secret not configured")
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || tc.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		Sub:   tc.Subject,
		Email: tc.Email,
		Name:  tc.Name,
	}
	if tc.ExpiresAt != nil {
		out.Exp = tc.ExpiresAt.Unix()
	}
	if tc.IssuedAt != nil {
		out.Iat = tc.IssuedAt.Unix()
	}
	return out, nil
}
