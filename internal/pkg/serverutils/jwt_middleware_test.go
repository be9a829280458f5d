package serverutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthApp(mw fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", mw, func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", UserID(ctx)))
	})
	return app
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	valid := signToken(t, testSecret, jwt.MapClaims{"user_id": "user-42", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, testSecret, jwt.MapClaims{"user_id": "user-42", "exp": time.Now().Add(-time.Hour).Unix()})
	wrongKey := signToken(t, "other", jwt.MapClaims{"user_id": "user-42"})

	tests := []struct {
		name       string
		mw         fiber.Handler
		header     string
		wantStatus int
		wantUser   string
	}{
		{"required valid", JwtMiddleware, "Bearer " + valid, 200, "user-42"},
		{"required missing", JwtMiddleware, "", 401, ""},
		{"required expired", JwtMiddleware, "Bearer " + expired, 401, ""},
		{"required wrong key", JwtMiddleware, "Bearer " + wrongKey, 401, ""},
		{"optional valid", OptionalJwtMiddleware, "Bearer " + valid, 200, "user-42"},
		{"optional anonymous", OptionalJwtMiddleware, "", 200, ""},
		{"optional invalid", OptionalJwtMiddleware, "Bearer garbage", 401, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newAuthApp(tt.mw).Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == 200 {
				var body BaseResponse[string]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.wantUser, body.Data)
			}
		})
	}
}

func TestJwtMiddlewareQueryToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": "user-7", "exp": time.Now().Add(time.Hour).Unix()})

	resp, err := newAuthApp(JwtMiddleware).Test(httptest.NewRequest("GET", "/whoami?token="+token, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body BaseResponse[string]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-7", body.Data)
}
