package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTer issues and verifies HS256 bearer tokens.
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// RefreshGrace is how long after expiry a token may still be refreshed.
	RefreshGrace time.Duration
	Leeway       time.Duration
	Now          func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(uid, email string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.TTL)
	claims := Claims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	return s, exp, err
}

func (j *JWTer) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
	}
	return j.Secret, nil
}

// Parse verifies signature and expiry. It returns ErrTokenExpired for a well-signed
// token past its expiry and ErrTokenInvalid for everything else.
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, j.keyFunc,
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(j.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" {
		return nil, ErrTokenInvalid
	}
	return c, nil
}

// ParseForRefresh accepts a valid token, or an expired one still inside RefreshGrace.
// The signature is always checked.
func (j *JWTer) ParseForRefresh(tokenStr string) (*Claims, error) {
	c, err := j.Parse(tokenStr)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	t, perr := jwt.ParseWithClaims(tokenStr, &Claims{}, j.keyFunc,
		jwt.WithIssuer(j.Issuer),
		jwt.WithoutClaimsValidation(),
	)
	if perr != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, perr)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || c.UID == "" || c.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	if j.now().After(c.ExpiresAt.Time.Add(j.RefreshGrace)) {
		return nil, ErrTokenExpired
	}
	return c, nil
}
