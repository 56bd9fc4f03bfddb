package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestSessionIssuesSignedCookie(t *testing.T) {
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		assert.NotEmpty(t, s.ID)
		assert.False(t, s.SignedIn())
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	c := sessionCookie(t, rec.Result())
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	// payload.signature
	assert.Len(t, strings.Split(c.Value, "."), 2)
}

func TestSessionRoundTripsSignIn(t *testing.T) {
	var firstID string
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		firstID = s.ID
		s.SignIn("42", "token-42")
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	c := sessionCookie(t, rec.Result())
	require.NotNil(t, c)

	// replay the cookie: identity survives, session ID was regenerated
	h2 := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		assert.True(t, s.SignedIn())
		assert.Equal(t, "42", s.UserID)
		assert.Equal(t, "token-42", s.Token)
		assert.NotEqual(t, firstID, s.ID)
		_, _ = w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	h2.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		s.SignIn("42", "token-42")
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	c := sessionCookie(t, rec.Result())
	require.NotNil(t, c)

	parts := strings.Split(c.Value, ".")
	require.Len(t, parts, 2)
	c.Value = parts[0] + ".AAAA" // break the signature

	h2 := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, GetSession(r).SignedIn())
		_, _ = w.Write([]byte("ok"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	h2.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSignOutClearsIdentity(t *testing.T) {
	s := &SessionData{ID: "x", UserID: "42", Token: "tok", CSRFToken: "c"}
	s.SignOut()
	assert.False(t, s.SignedIn())
	assert.Empty(t, s.UserID)
	assert.Empty(t, s.Token)
	assert.NotEqual(t, "x", s.ID)
}

func TestCSRFRejectsMissingOrWrongToken(t *testing.T) {
	h := Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})))

	// GET passes without a token
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// POST without a token is refused
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsFormToken(t *testing.T) {
	// first request to learn the token
	var token string
	h := Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = GetSession(r).CSRFToken
		_, _ = w.Write([]byte("ok"))
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rec.Result())
	require.NotNil(t, c)
	require.NotEmpty(t, token)

	form := url.Values{"csrf_token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHydratesUserFromSession(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		require.NotNil(t, u)
		assert.Equal(t, "42", u.ID)
		assert.Equal(t, "tok", u.Token)
		_, _ = w.Write([]byte("ok"))
	})
	sd := &SessionData{ID: "s", UserID: "42", Token: "tok"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), sd))
	Auth(inner).ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireUserRedirects(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cars/new", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
