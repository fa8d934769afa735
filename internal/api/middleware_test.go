package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPing(t *testing.T) {
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})

	w := doRequest(t, router, http.MethodGet, "/ping", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})
	uid := primitive.NewObjectID().Hex()

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID:           uid,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{UserID: uid}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"wrong key":      wrongKey,
		"expired":        signToken(t, uid, time.Now().Add(-time.Minute)),
		"no expiry":      noExpiry,
		"bad user id":    signToken(t, "not-an-object-id", time.Now().Add(time.Hour)),
		"empty user id":  signToken(t, "", time.Now().Add(time.Hour)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, "/api/v1/me", token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthMiddleware_NonBearerScheme(t *testing.T) {
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})
	uid := primitive.NewObjectID().Hex()
	token := signToken(t, uid, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Basic "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	router := newTestRouter(&stubPlanService{}, &stubMoodService{})
	uid := primitive.NewObjectID().Hex()

	w := doRequest(t, router, http.MethodGet, "/api/v1/me", signToken(t, uid, time.Now().Add(time.Hour)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uid, decodeBody(t, w)["userId"])
}
