package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byName(cs []*http.Cookie) map[string]*http.Cookie {
	m := make(map[string]*http.Cookie, len(cs))
	for _, c := range cs {
		m[c.Name] = c
	}
	return m
}

func TestSet(t *testing.T) {
	rr := httptest.NewRecorder()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	Set(rr, "tok", Options{TTL: 15 * time.Minute, Secure: true}, now)

	cs := byName(rr.Result().Cookies())
	require.Len(t, cs, 2)

	access := cs[AccessToken]
	require.NotNil(t, access)
	assert.Equal(t, "tok", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, "/", access.Path)
	assert.True(t, now.Add(15*time.Minute).Equal(access.Expires))

	logged := cs[LoggedIn]
	require.NotNil(t, logged)
	assert.Equal(t, "true", logged.Value)
	assert.False(t, logged.HttpOnly)
	assert.Equal(t, 900, logged.MaxAge)
}

func TestSet_NotSecureOutsideProduction(t *testing.T) {
	rr := httptest.NewRecorder()
	Set(rr, "tok", Options{TTL: time.Minute}, time.Now())
	for _, c := range rr.Result().Cookies() {
		assert.False(t, c.Secure, c.Name)
	}
}

func TestClear(t *testing.T) {
	rr := httptest.NewRecorder()
	Clear(rr, Options{})

	cs := byName(rr.Result().Cookies())
	require.Len(t, cs, 2)
	for _, name := range []string{AccessToken, LoggedIn} {
		assert.Empty(t, cs[name].Value)
		assert.Less(t, cs[name].MaxAge, 0)
	}
}

func TestToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, Token(req))

	req.AddCookie(&http.Cookie{Name: AccessToken, Value: "tok"})
	assert.Equal(t, "tok", Token(req))
}
