package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-ops/internal/domain"

	"github.com/gin-gonic/gin"
)

type stubEstablishmentRepo struct {
	establishment *domain.Establishment
	err           error
}

func (s *stubEstablishmentRepo) GetByKey(_ context.Context, _ string) (*domain.Establishment, error) {
	return s.establishment, s.err
}

func middlewareRouter(repo establishmentRepo, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:establishmentKey/test", establishmentMiddleware(repo), handler)
	return router
}

func TestEstablishmentMiddleware_Success(t *testing.T) {
	repo := &stubEstablishmentRepo{
		establishment: &domain.Establishment{ID: "123", Key: "bistro", Name: "Bistro"},
	}
	router := middlewareRouter(repo, func(c *gin.Context) {
		est := establishmentFrom(c)
		if est.ID != "123" {
			t.Fatalf("expected establishment in context, got %+v", est)
		}
		if id := c.GetString("establishmentID"); id != "123" {
			t.Fatalf("expected establishmentID key, got %q", id)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/bistro/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestEstablishmentMiddleware_NotFound(t *testing.T) {
	repo := &stubEstablishmentRepo{err: domain.ErrNotFound}
	router := middlewareRouter(repo, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/missing/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestEstablishmentMiddleware_Error(t *testing.T) {
	repo := &stubEstablishmentRepo{err: errors.New("boom")}
	router := middlewareRouter(repo, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/bistro/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestEstablishmentMiddleware_BlankKey(t *testing.T) {
	repo := &stubEstablishmentRepo{}
	router := middlewareRouter(repo, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/%20/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
