package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core/user"
)

// ErrInvalidToken is returned for tokens that are malformed, forged or expired.
var ErrInvalidToken = errors.New("invalid session token")

// Claims represents the session claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string    `json:"name,omitempty"`
	Role  user.Role `json:"role"`
	OrgID string    `json:"org_id,omitempty"`
}

// Principal rebuilds the principal the claims were issued for.
func (c Claims) Principal() (user.Principal, error) {
	return user.NewPrincipal(c.Subject, c.Name, c.Role, c.OrgID)
}

// TokenCodec issues and verifies HS256-signed session tokens.
type TokenCodec struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secretKey, issuer string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{key: []byte(secretKey), issuer: issuer, ttl: ttl, now: time.Now}
}

// SigningKey returns the key tokens are signed with.
func (tc *TokenCodec) SigningKey() []byte { return tc.key }

func (tc *TokenCodec) claims(p user.Principal) *Claims {
	now := tc.now()
	org, _ := p.OrgAffiliation()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    tc.issuer,
			Subject:   p.ID(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tc.ttl).Unix(),
		},
		Name:  p.Name(),
		Role:  p.Role(),
		OrgID: org,
	}
}

// Issue generates a signed token representing the principal.
func (tc *TokenCodec) Issue(p user.Principal) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims(p))
	ss, err := token.SignedString(tc.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Parse verifies the token and returns the principal it represents.
func (tc *TokenCodec) Parse(token string) (user.Principal, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tc.key, nil
	})
	if err != nil {
		return user.Principal{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return tc.Verify(claims)
}

// Verify checks claims whose signature and expiry were already validated,
// and returns the principal they represent.
func (tc *TokenCodec) Verify(claims *Claims) (user.Principal, error) {
	if tc.issuer != "" && !claims.VerifyIssuer(tc.issuer, true) {
		return user.Principal{}, errors.Wrap(ErrInvalidToken, "unexpected issuer")
	}
	p, err := claims.Principal()
	if err != nil {
		return user.Principal{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return p, nil
}
