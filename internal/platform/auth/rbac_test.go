package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(c echo.Context, roles ...string) echo.Context {
	ctx := context.WithValue(c.Request().Context(), UserRolesKey, roles)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := contextWithRoles(e.NewContext(req, httptest.NewRecorder()), "dentist")

	mw := RequireRole("dentist")
	err := mw(func(c echo.Context) error { return nil })(c)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := contextWithRoles(e.NewContext(req, httptest.NewRecorder()), "patient")

	mw := RequireRole("dentist")
	err := mw(func(c echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := contextWithRoles(e.NewContext(req, httptest.NewRecorder()), "admin")

	mw := RequireRole("dentist")
	if err := mw(func(c echo.Context) error { return nil })(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_NoRoles(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := RequireRole("patient")
	if err := mw(func(c echo.Context) error { return nil })(c); err == nil {
		t.Error("expected error for missing roles")
	}
}
