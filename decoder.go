package session

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeClaims extracts normalized Claims from a bearer credential without
// verifying its signature. Verification is the server's job; the client only
// parses the payload for display and authorization hinting, the same way the
// front end always has.
//
// Any malformed, undecodable, or structurally incomplete token yields an
// ErrTokenMalformed classified error. DecodeClaims never panics on hostile
// input.
func DecodeClaims(credential string) (*Claims, error) {
	if credential == "" {
		return nil, malformed("empty credential")
	}

	payload := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, payload); err != nil {
		return nil, malformed(err.Error())
	}

	subject, ok := subjectFromPayload(payload)
	if !ok {
		return nil, malformed("missing subject claim")
	}

	roleRaw, ok := payload["role"].(string)
	if !ok || roleRaw == "" {
		return nil, malformed("missing role claim")
	}
	role, _ := ParseRole(roleRaw)

	claims := &Claims{
		Subject: subject,
		Role:    role,
	}

	exp, err := payload.GetExpirationTime()
	if err != nil {
		return nil, malformed("unreadable exp claim")
	}
	if exp != nil {
		claims.Expiry = &exp.Time
	}

	if iat, err := payload.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = &iat.Time
	}

	return claims, nil
}

// subjectFromPayload normalizes the subject identifier once, at the decode
// boundary. Token issuers have used user_id, uid, id, and sub over time, and
// numeric ids arrive as JSON numbers.
func subjectFromPayload(payload jwt.MapClaims) (string, bool) {
	for _, key := range []string{"user_id", "uid", "id", "sub"} {
		raw, exists := payload[key]
		if !exists {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v != "" {
				return v, true
			}
		case float64:
			return strconv.FormatInt(int64(v), 10), true
		case json.Number:
			return v.String(), true
		}
	}
	return "", false
}

func malformed(reason string) error {
	clone := ErrTokenMalformed.Clone()
	if clone == nil {
		return ErrTokenMalformed
	}
	clone.Message = fmt.Sprintf("credential is malformed: %s", reason)
	clone.Source = ErrTokenMalformed
	return clone
}
