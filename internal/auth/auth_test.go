package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Gate {
	return NewGate("test-secret", "restonqwer@gmail.com", "123456")
}

func TestLoginIssuesDecodableToken(t *testing.T) {
	gate := newTestGate()

	token, err := gate.Login("restonqwer@gmail.com", "123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := gate.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "restonqwer@gmail.com", email)
}

func TestLoginRejectsAnyOtherPair(t *testing.T) {
	gate := newTestGate()

	cases := []struct{ email, password string }{
		{"restonqwer@gmail.com", "wrong"},
		{"someone@else.com", "123456"},
		{"", ""},
	}
	for _, tc := range cases {
		_, err := gate.Login(tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestVerifyRejectsGarbageAndForeignTokens(t *testing.T) {
	gate := newTestGate()

	_, err := gate.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := NewGate("other-secret", "restonqwer@gmail.com", "123456")
	token, err := other.Login("restonqwer@gmail.com", "123456")
	require.NoError(t, err)

	_, err = gate.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterAlwaysDisabled(t *testing.T) {
	assert.ErrorIs(t, newTestGate().Register(), ErrRegistrationDisabled)
}

func TestProtectBlocksBeforeHandler(t *testing.T) {
	gate := newTestGate()
	app := fiber.New()

	reached := false
	app.Get("/secret", gate.Protect(), func(c *fiber.Ctx) error {
		reached = true
		return c.JSON(fiber.Map{"email": c.Locals(LocalsEmail)})
	})

	// No Authorization header at all.
	req := httptest.NewRequest("GET", "/secret", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)

	// Malformed token.
	req = httptest.NewRequest("GET", "/secret", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)

	// Valid token passes through and the email lands in locals.
	token, err := gate.Login("restonqwer@gmail.com", "123456")
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, reached)
}
