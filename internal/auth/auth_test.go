package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-ops/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStaff() domain.Staff {
	return domain.Staff{ID: "staff-1", EstablishmentID: "est-1", Email: "cook@example.com", Role: domain.RoleKitchen}
}

func TestTokensIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(testStaff())
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID())
	assert.Equal(t, "est-1", claims.EstablishmentID)
	assert.Equal(t, domain.RoleKitchen, claims.Role)
}

func TestTokensRejectsWrongSecretAndExpiry(t *testing.T) {
	raw, err := NewTokens("secret", time.Hour).Issue(testStaff())
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewTokens("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = later.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func guardedRouter(tokens *Tokens, establishmentID string, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		c.Set("establishmentID", establishmentID)
		c.Next()
	}, Guard(tokens, roles...), func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.StaffID())
	})
	return r
}

func TestGuard(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(testStaff())
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		estID  string
		roles  []string
		want   int
	}{
		{name: "missing", header: "", estID: "est-1", want: http.StatusUnauthorized},
		{name: "malformed", header: "Token " + raw, estID: "est-1", want: http.StatusUnauthorized},
		{name: "ok", header: "Bearer " + raw, estID: "est-1", want: http.StatusOK},
		{name: "other establishment", header: "Bearer " + raw, estID: "est-2", want: http.StatusForbidden},
		{name: "role allowed", header: "Bearer " + raw, estID: "est-1", roles: []string{domain.RoleManager, domain.RoleKitchen}, want: http.StatusOK},
		{name: "role denied", header: "Bearer " + raw, estID: "est-1", roles: []string{domain.RoleOwner}, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			guardedRouter(tokens, tc.estID, tc.roles...).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "staff-1", rec.Body.String())
			}
		})
	}
}
