package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *TestDB
	testServer *TestServer
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		fmt.Printf("skipping integration tests: %v\n", err)
		os.Exit(0)
	}
	testDB = db
	testServer = NewTestServer(db.DB)

	code := m.Run()

	testServer.Close()
	testDB.Teardown(ctx)
	os.Exit(code)
}

func TestSignupAndSignin(t *testing.T) {
	email, password := TestUser("signup")

	resp, err := testServer.Request(http.MethodPost, "/api/signup", map[string]string{
		"name":     "Jordan",
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := ExtractSessionCookie(resp)
	require.NotNil(t, cookie, "signup should set the session cookie")
	assert.NotEmpty(t, cookie.Value)

	var signupResp struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Gravatar string `json:"gravatar"`
		} `json:"user"`
	}
	require.NoError(t, ParseJSONResponse(resp, &signupResp))
	assert.Equal(t, email, signupResp.User.Email)
	assert.Contains(t, signupResp.User.Gravatar, "gravatar.com/avatar/")

	// Signing in with the same credentials issues a fresh token
	resp, err = testServer.Request(http.MethodPost, "/api/signin", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie = ExtractSessionCookie(resp)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	resp.Body.Close()
}

func TestSignup_DuplicateEmail(t *testing.T) {
	email, password := TestUser("dup")

	body := map[string]string{"name": "Jordan", "email": email, "password": password}

	resp, err := testServer.Request(http.MethodPost, "/api/signup", body, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = testServer.Request(http.MethodPost, "/api/signup", body, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	msg, err := GetErrorMessage(resp)
	require.NoError(t, err)
	assert.Equal(t, "Email is already registered", msg)
}

func TestSignin_UnknownEmail(t *testing.T) {
	resp, err := testServer.Request(http.MethodPost, "/api/signin", map[string]string{
		"email":    "never-registered@example.com",
		"password": "whatever1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	msg, err := GetErrorMessage(resp)
	require.NoError(t, err)
	assert.Equal(t, "Email is not registered", msg)
}

func TestSignin_LockoutAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	email, password := TestUser("lockout")
	_, err := SeedUser(ctx, testDB.Pool, "Casey", email, password)
	require.NoError(t, err)

	// Three wrong guesses trip the lock
	for i := 0; i < 3; i++ {
		resp, err := testServer.Request(http.MethodPost, "/api/signin", map[string]string{
			"email":    email,
			"password": "wrong-guess",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	// Even the correct password is rejected while locked
	resp, err := testServer.Request(http.MethodPost, "/api/signin", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	msg, err := GetErrorMessage(resp)
	require.NoError(t, err)
	assert.Contains(t, msg, "Account is locked")

	// After the lock window passes the account opens up again
	time.Sleep(testServer.Config.Auth.LockoutDuration + 100*time.Millisecond)

	resp, err = testServer.Request(http.MethodPost, "/api/signin", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProfileAndSignout(t *testing.T) {
	email, password := TestUser("profile")

	resp, err := testServer.Request(http.MethodPost, "/api/signup", map[string]string{
		"name":     "Riley",
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := ExtractSessionCookie(resp)
	require.NotNil(t, cookie)
	resp.Body.Close()

	// Profile with the session cookie
	resp, err = testServer.RequestWithSession(http.MethodGet, "/api/profile", cookie.Value, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	require.NoError(t, ParseJSONResponse(resp, &profile))
	assert.Equal(t, "Riley", profile.Name)
	assert.Equal(t, email, profile.Email)

	// Profile without a token is rejected
	resp, err = testServer.Request(http.MethodGet, "/api/profile", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Signout clears the cookie
	resp, err = testServer.RequestWithSession(http.MethodPost, "/api/signout", cookie.Value, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := ExtractSessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
	resp.Body.Close()
}

func TestAuthGate_RejectsBadTokens(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"garbage token", "not-a-jwt"},
		{"empty token", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := testServer.RequestWithSession(http.MethodGet, "/api/tasks", tc.token, nil)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			resp.Body.Close()
		})
	}
}
