package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fbawholesale/ops-service/internal/models"
)

// setGinTestMode ensures Gin does not write noisy logs during tests
func setGinTestMode() { gin.SetMode(gin.TestMode) }

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsWrongSecret(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	token := signTestToken(t, "other-secret", jwt.MapClaims{
		"user_id": "9f1c1b9e-58aa-4b51-93e2-1c7f6a3f3a10",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %d", w.Code)
	}
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":    userID,
			"email":      GetEmail(c),
			"full_name":  GetFullName(c),
			"session_id": GetSessionID(c),
		})
	})

	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id":   "9f1c1b9e-58aa-4b51-93e2-1c7f6a3f3a10",
		"email":     "ops@example.com",
		"full_name": "Ops User",
		"jti":       "session-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestGetSessionID_FallsBackToUserID(t *testing.T) {
	setGinTestMode()
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/secure", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})

	// No jti claim: session scope degrades to the user account
	token := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": "9f1c1b9e-58aa-4b51-93e2-1c7f6a3f3a10",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "9f1c1b9e-58aa-4b51-93e2-1c7f6a3f3a10" {
		t.Fatalf("expected user id fallback, got %q", w.Body.String())
	}
}

func TestRequireAction_DeniesMemberRole(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("org_id", "org-1")
		c.Set("role", models.RoleViewer)
	})
	r.PUT("/po/approve", RequireAction(models.ActionApprovePO), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPut, "/po/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer approving, got %d", w.Code)
	}
}

func TestRequireAction_AllowsAdmin(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("org_id", "org-1")
		c.Set("role", models.RoleAdmin)
	})
	r.PUT("/po/approve", RequireAction(models.ActionApprovePO), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPut, "/po/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}

func TestRequireAction_DeniesWithoutRole(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.GET("/dashboard", RequireAction(models.ActionViewDashboard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without role in context, got %d", w.Code)
	}
}

func TestRequireAction_MemberOpenActions(t *testing.T) {
	setGinTestMode()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("org_id", "org-1")
		c.Set("role", models.RolePurchasing)
	})
	r.POST("/po", RequireAction(models.ActionCreatePO), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/dashboard", RequireAction(models.ActionViewDashboard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/po", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for purchasing creating a PO, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for purchasing viewing dashboard, got %d", w.Code)
	}
}

func TestTransitionFailure_MissingOrderIs404(t *testing.T) {
	code, body := transitionFailure("0b6f9f3e-8f5a-4f1e-9f50-62a5ef0a6c55", "", models.POStatusApproved)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing order, got %d", code)
	}
	if body.Error != "Purchase order not found" {
		t.Fatalf("unexpected error code %q", body.Error)
	}
}

func TestTransitionFailure_WrongStateIs409(t *testing.T) {
	// Every state except the expected one loses the guarded update; the
	// disambiguating re-read maps all of those to a conflict. Exactly one of
	// two concurrent decisions can win.
	cases := []struct{ current, to models.POStatus }{
		{models.POStatusDraft, models.POStatusApproved},
		{models.POStatusApproved, models.POStatusApproved},
		{models.POStatusCancelled, models.POStatusApproved}, // reject won the race
		{models.POStatusReceived, models.POStatusApproved},
		{models.POStatusApproved, models.POStatusCancelled}, // approve won the race
		{models.POStatusSubmitted, models.POStatusSubmitted},
	}
	for _, tc := range cases {
		if models.CanTransition(tc.current, tc.to) {
			t.Fatalf("test case %s -> %s should be an invalid transition", tc.current, tc.to)
		}
		code, body := transitionFailure("0b6f9f3e-8f5a-4f1e-9f50-62a5ef0a6c55", tc.current, tc.to)
		if code != http.StatusConflict {
			t.Errorf("%s -> %s: expected 409, got %d", tc.current, tc.to, code)
		}
		if body.Error != "Invalid transition" {
			t.Errorf("%s -> %s: unexpected error code %q", tc.current, tc.to, body.Error)
		}
	}
}

func TestShipmentCreateFailure_Mapping(t *testing.T) {
	poID := "0b6f9f3e-8f5a-4f1e-9f50-62a5ef0a6c55"

	code, body := shipmentCreateFailure(poID, errPONotFound)
	if code != http.StatusNotFound {
		t.Fatalf("missing order: expected 404, got %d", code)
	}

	// Shipments only derive from approved orders
	code, body = shipmentCreateFailure(poID, errPONotApproved)
	if code != http.StatusConflict || body.Error != "Invalid transition" {
		t.Fatalf("unapproved order: expected 409 Invalid transition, got %d %q", code, body.Error)
	}

	code, body = shipmentCreateFailure(poID, errDuplicateReference)
	if code != http.StatusConflict || body.Error != "Duplicate reference" {
		t.Fatalf("reference collision: expected 409 Duplicate reference, got %d %q", code, body.Error)
	}

	code, _ = shipmentCreateFailure(poID, errors.New("connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("storage error: expected 500, got %d", code)
	}
}

func TestApprovePurchaseOrder_MalformedBodyIs400(t *testing.T) {
	setGinTestMode()
	h := NewHandler(nil, nil, nil, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "9f1c1b9e-58aa-4b51-93e2-1c7f6a3f3a10")
		c.Set("org_id", "org-1")
		c.Set("role", models.RoleAdmin)
	})
	r.PUT("/po/:po_id/approve", h.ApprovePurchaseOrder)

	req := httptest.NewRequest(http.MethodPut,
		"/po/0b6f9f3e-8f5a-4f1e-9f50-62a5ef0a6c55/approve",
		strings.NewReader(`{"notes": `))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestNewShipmentReference_Format(t *testing.T) {
	ref := newShipmentReference()
	if matched := regexp.MustCompile(`^SHIP-[0-9A-Z]+$`).MatchString(ref); !matched {
		t.Fatalf("unexpected reference format: %q", ref)
	}
}

func TestNewShipmentReference_Monotonic(t *testing.T) {
	a := newShipmentReference()
	time.Sleep(2 * time.Millisecond)
	b := newShipmentReference()
	if a == b {
		t.Fatalf("references from different milliseconds must differ, got %q twice", a)
	}
}
