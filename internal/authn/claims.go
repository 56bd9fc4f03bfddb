// Package authn reads the identifier claim out of backend-issued bearer
// tokens. The token is opaque to this app and never validated here; the
// backend is the authority. Decoding exists only to recover the user ID when
// the login response does not carry it.
package authn

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoIdentifier is returned when none of the known claims carries a usable
// user identifier.
var ErrNoIdentifier = errors.New("authn: token carries no user identifier")

// claimOrder is the strict probe priority for the identifier claim.
var claimOrder = []string{"user_id", "sub", "id"}

// UserIDFromToken parses the JWT without verifying its signature and returns
// the identifier claim in canonical decimal-string form. Claims are probed in
// user_id, sub, id order; the first non-empty one wins.
func UserIDFromToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("authn: decode token: %w", err)
	}
	for _, name := range claimOrder {
		if id := canonicalID(claims[name]); id != "" {
			return id, nil
		}
	}
	return "", ErrNoIdentifier
}

// canonicalID renders a claim value as a decimal string. JSON numbers arrive
// as float64; integral values are rendered without a fraction so they compare
// equal to backend seller IDs.
func canonicalID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
