package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func contextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, UserRoleKey, role)
}

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, string, string) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser, gotRole string
	handler := mw(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotUser = UserIDFromContext(ctx)
		gotRole = RoleFromContext(ctx)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			rec.Code = he.Code
		}
	}
	return rec, gotUser, gotRole
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "doctor",
	})

	rec, user, role := doRequest(mw, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if user != "u-42" {
		t.Errorf("user id = %q, want u-42", user)
	}
	if role != "doctor" {
		t.Errorf("role = %q, want doctor", role)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	rec, _, _ := doRequest(mw, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTMiddleware_BadFormat(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	rec, _, _ := doRequest(mw, "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	})
	signed, err := token.SignedString([]byte("other-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	rec, _, _ := doRequest(mw, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	rec, _, _ := doRequest(mw, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestDevAuthMiddleware_Defaults(t *testing.T) {
	rec, user, role := doRequest(DevAuthMiddleware(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if user != "dev-user" {
		t.Errorf("user id = %q, want dev-user", user)
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{"matching role", "nurse", []string{"nurse"}, http.StatusOK},
		{"admin override", "admin", []string{"doctor"}, http.StatusOK},
		{"wrong role", "patient", []string{"doctor", "nurse"}, http.StatusForbidden},
		{"no role", "", []string{"doctor"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != "" {
				ctx := c.Request().Context()
				c.SetRequest(c.Request().WithContext(
					contextWithRole(ctx, tc.role)))
			}

			handler := RequireRole(tc.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			err := handler(c)

			got := rec.Code
			if he, ok := err.(*echo.HTTPError); ok {
				got = he.Code
			}
			if got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
		})
	}
}
