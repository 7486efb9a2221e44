package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mdalbakiakon/lms-backend/internal/models"
	"github.com/mdalbakiakon/lms-backend/internal/service/token"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		required []string
		want     bool
	}{
		{"unauthenticated denied", "", nil, false},
		{"unauthenticated denied with roles", "", []string{models.RoleAdmin}, false},
		{"any authenticated on empty set", models.RoleStudent, nil, true},
		{"role in set", models.RoleStudent, []string{models.RoleStudent}, true},
		{"role not in set", models.RoleInstructor, []string{models.RoleStudent}, false},
		{"admin gets no implicit grant", models.RoleAdmin, []string{models.RoleInstructor}, false},
		{"admin allowed when listed", models.RoleAdmin, []string{models.RoleAdmin}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Allowed(tc.role, tc.required))
		})
	}
}

func TestPolicyTable(t *testing.T) {
	require.Equal(t, []string{models.RoleAdmin}, Policy["category:create"])
	require.Equal(t, []string{models.RoleInstructor}, Policy["course:create"])
	require.Equal(t, []string{models.RoleStudent}, Policy["enrollment:create"])
	require.Empty(t, Policy["dashboard:view"])
}

func guardedEcho(t *testing.T) (*echo.Echo, *token.Service) {
	t.Helper()

	tokens := token.NewService([]byte("access"), []byte("refresh"), time.Minute, time.Hour)
	mw := &Middleware{Tokens: tokens}

	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/categories/create", ok, mw.Authenticate, mw.Require("category:create"))
	e.GET("/dashboard", ok, mw.Authenticate, mw.Require("dashboard:view"))

	return e, tokens
}

func doGuarded(e *echo.Echo, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireDeniesUnauthenticated(t *testing.T) {
	e, _ := guardedEcho(t)

	rec := doGuarded(e, http.MethodPost, "/categories/create", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGuarded(e, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGuarded(e, http.MethodGet, "/dashboard", "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireDeniesWrongRole(t *testing.T) {
	e, tokens := guardedEcho(t)

	access, _, err := tokens.IssuePair(1, models.RoleInstructor)
	require.NoError(t, err)

	rec := doGuarded(e, http.MethodPost, "/categories/create", access)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAllowsListedRole(t *testing.T) {
	e, tokens := guardedEcho(t)

	access, _, err := tokens.IssuePair(1, models.RoleAdmin)
	require.NoError(t, err)

	rec := doGuarded(e, http.MethodPost, "/categories/create", access)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAllowsAnyAuthenticatedOnEmptySet(t *testing.T) {
	e, tokens := guardedEcho(t)

	for _, role := range []string{models.RoleAdmin, models.RoleInstructor, models.RoleStudent} {
		access, _, err := tokens.IssuePair(1, role)
		require.NoError(t, err)

		rec := doGuarded(e, http.MethodGet, "/dashboard", access)
		require.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}
}
