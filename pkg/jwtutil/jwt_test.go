package jwtutil_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"practice-service/pkg/jwtutil"
)

func newUtil(key string) *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:        key,
		AccessExpiration:  time.Hour,
		RefreshExpiration: 24 * time.Hour,
	})
}

func TestIssuePair(t *testing.T) {
	c := qt.New(t)
	util := newUtil("test-key")

	pair, err := util.IssuePair(42, "jane@example.com", "client")
	c.Assert(err, qt.IsNil)

	access, err := util.ValidateTyped(pair.Access, jwtutil.TokenAccess)
	c.Assert(err, qt.IsNil)
	c.Assert(access.UserID, qt.Equals, uint(42))
	c.Assert(access.Email, qt.Equals, "jane@example.com")
	c.Assert(access.Role, qt.Equals, "client")

	refresh, err := util.ValidateTyped(pair.Refresh, jwtutil.TokenRefresh)
	c.Assert(err, qt.IsNil)
	c.Assert(refresh.ExpiresAt.After(access.ExpiresAt.Time), qt.IsTrue)
}

func TestIssuePairIsFresh(t *testing.T) {
	c := qt.New(t)
	util := newUtil("test-key")

	first, err := util.IssuePair(1, "a@example.com", "professional")
	c.Assert(err, qt.IsNil)
	second, err := util.IssuePair(1, "a@example.com", "professional")
	c.Assert(err, qt.IsNil)

	c.Assert(first.Access, qt.Not(qt.Equals), second.Access)
	c.Assert(first.Refresh, qt.Not(qt.Equals), second.Refresh)
}

func TestValidateTypedRejectsSwappedTokens(t *testing.T) {
	c := qt.New(t)
	util := newUtil("test-key")

	pair, err := util.IssuePair(1, "a@example.com", "professional")
	c.Assert(err, qt.IsNil)

	_, err = util.ValidateTyped(pair.Access, jwtutil.TokenRefresh)
	c.Assert(err, qt.Equals, jwtutil.ErrWrongTokenType)
	_, err = util.ValidateTyped(pair.Refresh, jwtutil.TokenAccess)
	c.Assert(err, qt.Equals, jwtutil.ErrWrongTokenType)
}

func TestValidateTokenWrongKey(t *testing.T) {
	c := qt.New(t)

	pair, err := newUtil("key-one").IssuePair(1, "a@example.com", "professional")
	c.Assert(err, qt.IsNil)

	_, err = newUtil("key-two").ValidateToken(pair.Access)
	c.Assert(err, qt.IsNotNil)
}

func TestValidateTokenExpired(t *testing.T) {
	c := qt.New(t)
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:        "test-key",
		AccessExpiration:  -time.Minute,
		RefreshExpiration: time.Hour,
	})

	pair, err := util.IssuePair(1, "a@example.com", "professional")
	c.Assert(err, qt.IsNil)

	_, err = util.ValidateToken(pair.Access)
	c.Assert(err, qt.IsNotNil)
}
