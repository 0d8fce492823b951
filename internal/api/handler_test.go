package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{store.ErrProductNotFound, http.StatusNotFound},
		{store.ErrCartItemNotFound, http.StatusNotFound},
		{store.ErrOrderNotFound, http.StatusNotFound},
		{store.ErrInsufficientStock, http.StatusConflict},
		{store.ErrEmailTaken, http.StatusBadRequest},
		{service.ErrInvalidQuantity, http.StatusBadRequest},
		{service.ErrEmptyOrder, http.StatusBadRequest},
		{service.ErrPasswordMismatch, http.StatusBadRequest},
		{service.ErrMissingFields, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", store.ErrInsufficientStock), http.StatusConflict},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusForError(tc.err), "error: %v", tc.err)
	}
}

func newAuthTestRouter(tokens *auth.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", authRequired(tokens), func(c *gin.Context) {
		identity := callerIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})
	return router
}

func TestAuthRequiredMissingCookie(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	router := newAuthTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	router := newAuthTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "not-a-token"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	expired := auth.NewTokenService("test-secret", -time.Hour)
	token, err := expired.Issue(auth.Identity{UserID: 7, Email: "a@b.c", Role: "user"})
	require.NoError(t, err)

	router := newAuthTestRouter(auth.NewTokenService("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Issue(auth.Identity{UserID: 7, Email: "a@b.c", Role: "user"})
	require.NoError(t, err)

	router := newAuthTestRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}
