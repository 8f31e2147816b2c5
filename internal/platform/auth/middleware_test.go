package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testCfg = JWTConfig{SigningKey: []byte("0123456789abcdef0123456789abcdef"), TokenTTL: time.Hour}

func TestIssueAndParseToken(t *testing.T) {
	tok, err := IssueToken(testCfg, "user-1", []string{"dentist"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseToken(testCfg, tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "dentist" {
		t.Errorf("unexpected roles: %v", claims.Roles)
	}
}

func TestParseToken_WrongKey(t *testing.T) {
	tok, _ := IssueToken(testCfg, "user-1", nil)
	other := JWTConfig{SigningKey: []byte("another-secret-another-secret-xx"), TokenTTL: time.Hour}
	if _, err := ParseToken(other, tok); err == nil {
		t.Error("expected error for wrong signing key")
	}
}

func TestParseToken_RejectsNone(t *testing.T) {
	// Token signed with "none" must never validate
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken(testCfg, tok); err == nil {
		t.Error("expected error for alg=none token")
	}
}

func TestParseToken_Expired(t *testing.T) {
	cfg := JWTConfig{SigningKey: testCfg.SigningKey, TokenTTL: -time.Minute}
	tok, _ := IssueToken(cfg, "user-1", nil)
	if _, err := ParseToken(testCfg, tok); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := JWTMiddleware(testCfg)
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tok, _ := IssueToken(testCfg, "user-7", []string{"patient"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	c := e.NewContext(req, httptest.NewRecorder())

	var gotUID string
	var gotRoles []string
	mw := JWTMiddleware(testCfg)
	err := mw(func(c echo.Context) error {
		gotUID = UserIDFromContext(c.Request().Context())
		gotRoles = RolesFromContext(c.Request().Context())
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUID != "user-7" {
		t.Errorf("expected user-7, got %s", gotUID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "patient" {
		t.Errorf("unexpected roles: %v", gotRoles)
	}
}

func TestDevAuthMiddleware_NoToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := DevAuthMiddleware()
	err := mw(func(c echo.Context) error {
		if UserIDFromContext(c.Request().Context()) != "dev-user" {
			t.Error("expected dev-user subject")
		}
		roles := RolesFromContext(c.Request().Context())
		if len(roles) != 1 || roles[0] != "admin" {
			t.Errorf("expected admin role, got %v", roles)
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
