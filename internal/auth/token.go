package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoCredential      = errors.New("no credential supplied")
	ErrInvalidCredential = errors.New("invalid credential")
)

// Verifier checks session tokens issued by the HTTP auth subsystem.
// Both sides share the same HS256 secret, so a token minted at login is
// valid at the WebSocket handshake too.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the token's signature and expiry and returns the
// subject user ID. It does not consult the user store; callers that need
// to confirm the identity still exists do that separately.
func (v *Verifier) Verify(tokenStr string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, ErrNoCredential
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidCredential
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidCredential
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidCredential
	}

	return userID, nil
}
