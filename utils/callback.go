package utils

import (
	"errors"
	"fmt"

	"vermux/models"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var ErrInvalidCallbackToken = errors.New("invalid callback token")

// SignCallback serializes completion-callback claims as an HS256 JWT so the
// receiver can verify the payload came from this server.
func SignCallback(claims *models.CallbackClaims, secret []byte) (string, error) {
	if claims == nil {
		return "", errors.New("claims cannot be nil")
	}
	if len(secret) == 0 {
		return "", errors.New("no callback secret configured")
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	token, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign callback: %w", err)
	}
	return token, nil
}

// VerifyCallback checks a signed callback token and returns its claims.
// Provided for callback receivers and tests.
func VerifyCallback(token string, secret []byte) (*models.CallbackClaims, error) {
	if token == "" {
		return nil, ErrInvalidCallbackToken
	}

	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallbackToken, err)
	}

	claims := &models.CallbackClaims{}
	if err := tok.Claims(secret, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallbackToken, err)
	}
	return claims, nil
}
