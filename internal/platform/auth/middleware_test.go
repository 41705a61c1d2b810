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

var testSigningKey = []byte("test-secret-key-for-hmac-signing")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func invokeJWT(t *testing.T, cfg JWTConfig, authHeader string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTMiddleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ClinicID: "55aa0bcd-9f1e-4b77-8a41-2f36d7e0c111",
		Role:     RoleReceptionist,
	}
	cfg := JWTConfig{SigningKey: testSigningKey}

	c, err := invokeJWT(t, cfg, "Bearer "+signToken(t, claims))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := c.Get("jwt_clinic_id").(string); got != claims.ClinicID {
		t.Errorf("expected clinic claim on echo context, got %q", got)
	}
	if got, _ := c.Get("jwt_role").(string); got != RoleReceptionist {
		t.Errorf("expected role claim on echo context, got %q", got)
	}
	ctx := c.Request().Context()
	if UserIDFromContext(ctx) != "user-1" {
		t.Errorf("expected subject user-1, got %q", UserIDFromContext(ctx))
	}
	if RoleFromContext(ctx) != RoleReceptionist {
		t.Errorf("expected role on request context, got %q", RoleFromContext(ctx))
	}
}

func TestJWTMiddleware_PublicPathBypasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/health")

	handler := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("expected health to bypass auth, got %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, err := invokeJWT(t, JWTConfig{SigningKey: testSigningKey}, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing header, got %v", err)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "abc"} {
		_, err := invokeJWT(t, JWTConfig{SigningKey: testSigningKey}, header)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %v", header, err)
		}
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: RoleReceptionist,
	}
	_, err := invokeJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+signToken(t, claims))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("a-different-key-entirely-here!!"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, err = invokeJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+signed)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong signing key, got %v", err)
	}
}

func TestJWTMiddleware_IssuerMismatch(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://other-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	cfg := JWTConfig{SigningKey: testSigningKey, Issuer: "https://expected-issuer"}
	_, err := invokeJWT(t, cfg, "Bearer "+signToken(t, claims))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for issuer mismatch, got %v", err)
	}
}

func TestDevAuthMiddleware_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := DevAuthMiddleware("dev-clinic")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := c.Get("jwt_clinic_id").(string); got != "dev-clinic" {
		t.Errorf("expected dev clinic id, got %q", got)
	}
	if RoleFromContext(c.Request().Context()) != RolePlatformAdmin {
		t.Error("expected dev requests to carry the platform admin role")
	}
}

func TestRoleFromContext_Missing(t *testing.T) {
	if got := RoleFromContext(context.Background()); got != "" {
		t.Errorf("expected empty role, got %q", got)
	}
}
