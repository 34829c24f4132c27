package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn             func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByEmailFn         func(ctx context.Context, email string) (models.User, error)
	getByIDFn            func(ctx context.Context, userID string) (models.User, error)
	getRoleFn            func(ctx context.Context, userID string) (models.UserRole, error)
	updateProfileFn      func(ctx context.Context, tx store.Execer, userID, name, preferredCurrency string) error
	updatePasswordFn     func(ctx context.Context, tx store.Execer, userID, passwordHash string) error
	promoteAdminFn       func(ctx context.Context, tx store.Execer, userID string) error
	countFn              func(ctx context.Context) (int, error)
	deletePersonalDataFn func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetRole(ctx context.Context, userID string) (models.UserRole, error) {
	if s.getRoleFn == nil {
		return models.RoleNormal, nil
	}
	return s.getRoleFn(ctx, userID)
}

func (s stubUserStore) UpdateProfile(ctx context.Context, tx store.Execer, userID, name, preferredCurrency string) error {
	if s.updateProfileFn == nil {
		return nil
	}
	return s.updateProfileFn(ctx, tx, userID, name, preferredCurrency)
}

func (s stubUserStore) UpdatePasswordHash(ctx context.Context, tx store.Execer, userID, passwordHash string) error {
	if s.updatePasswordFn == nil {
		return nil
	}
	return s.updatePasswordFn(ctx, tx, userID, passwordHash)
}

func (s stubUserStore) PromoteAdmin(ctx context.Context, tx store.Execer, userID string) error {
	if s.promoteAdminFn == nil {
		return nil
	}
	return s.promoteAdminFn(ctx, tx, userID)
}

func (s stubUserStore) Count(ctx context.Context) (int, error) {
	if s.countFn == nil {
		return 1, nil
	}
	return s.countFn(ctx)
}

func (s stubUserStore) DeletePersonalData(ctx context.Context, tx store.Execer, userID string) error {
	if s.deletePersonalDataFn == nil {
		return nil
	}
	return s.deletePersonalDataFn(ctx, tx, userID)
}

type stubAudit struct{}

func (stubAudit) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	return nil
}

func (stubAudit) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	return nil, nil
}

type stubCategoryService struct {
	createFn func(ctx context.Context, userID string, cmd services.CategoryCommand) (models.Category, error)
	getFn    func(ctx context.Context, categoryID, userID string) (models.Category, error)
	deleteFn func(ctx context.Context, categoryID, userID string) error
}

func (s stubCategoryService) Create(ctx context.Context, userID string, cmd services.CategoryCommand) (models.Category, error) {
	return s.createFn(ctx, userID, cmd)
}

func (s stubCategoryService) Get(ctx context.Context, categoryID, userID string) (models.Category, error) {
	return s.getFn(ctx, categoryID, userID)
}

func (s stubCategoryService) ListForUser(ctx context.Context, userID string, categoryType models.CategoryType, limit, offset int) ([]models.Category, error) {
	return nil, nil
}

func (s stubCategoryService) ListGlobal(ctx context.Context, limit, offset int) ([]models.Category, error) {
	return nil, nil
}

func (s stubCategoryService) ListPersonal(ctx context.Context, userID string, limit, offset int) ([]models.Category, error) {
	return nil, nil
}

func (s stubCategoryService) Update(ctx context.Context, categoryID, userID string, cmd services.CategoryCommand) (models.Category, error) {
	return models.Category{}, nil
}

func (s stubCategoryService) Delete(ctx context.Context, categoryID, userID string) error {
	return s.deleteFn(ctx, categoryID, userID)
}

func (s stubCategoryService) UsageStats(ctx context.Context, categoryID, userID string) (services.CategoryStats, error) {
	return services.CategoryStats{}, nil
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AllowedOrigins: "*",
		FrontendURL:    "https://app.example.com",
	}
}

func newTestHandler(users UserStore, categories CategoryService) *Handler {
	return New(fakeTxRunner{}, testConfig(), users, stubAudit{}, nil, nil, categories, nil, nil, nil, nil)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", userID, "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	var createdRole models.UserRole
	handler := newTestHandler(stubUserStore{
		countFn: func(context.Context) (int, error) { return 0, nil },
		createFn: func(_ context.Context, _ store.Execer, input store.UserInput) error {
			createdRole = input.Role
			return nil
		},
	}, stubCategoryService{})

	body := []byte(`{"name":"Ada","email":"ada@example.com","password":"pass1234","preferred_currency":"EUR"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if createdRole != models.RoleAdmin {
		t.Fatalf("first user role = %s, want admin", createdRole)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["token"] == "" {
		t.Fatalf("expected a token in response, got %s", rr.Body.String())
	}
}

func TestRegisterSecondUserStaysNormal(t *testing.T) {
	var createdRole models.UserRole
	handler := newTestHandler(stubUserStore{
		countFn: func(context.Context) (int, error) { return 3, nil },
		createFn: func(_ context.Context, _ store.Execer, input store.UserInput) error {
			createdRole = input.Role
			return nil
		},
	}, stubCategoryService{})

	body := []byte(`{"name":"Bob","email":"bob@example.com","password":"pass1234"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if createdRole != models.RoleNormal {
		t.Fatalf("role = %s, want normal", createdRole)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	handler := newTestHandler(stubUserStore{
		countFn: func(context.Context) (int, error) { return 1, nil },
		createFn: func(context.Context, store.Execer, store.UserInput) error {
			return &pq.Error{Code: "23505"}
		},
	}, stubCategoryService{})

	body := []byte(`{"name":"Ada","email":"ada@example.com","password":"pass1234"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	handler := newTestHandler(stubUserStore{}, stubCategoryService{})
	body := []byte(`{"name":"Ada","email":"ada@example.com","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	handler := newTestHandler(stubUserStore{
		getByEmailFn: func(_ context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}, stubCategoryService{})

	body := []byte(`{"email":"ada@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	handler := newTestHandler(stubUserStore{
		getByEmailFn: func(_ context.Context, email string) (models.User, error) {
			return models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}, stubCategoryService{})

	body := []byte(`{"email":"ada@example.com","password":"right-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	claims, err := auth.ParseToken("test-secret", resp["token"])
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("token user = %q, want user-1", claims.UserID)
	}
}

func TestCategoryNotFoundMapsTo404(t *testing.T) {
	handler := newTestHandler(stubUserStore{}, stubCategoryService{
		getFn: func(context.Context, string, string) (models.Category, error) {
			return models.Category{}, services.ErrNotFound
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/categories/cat-1", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCategoryForbiddenMapsTo403(t *testing.T) {
	handler := newTestHandler(stubUserStore{}, stubCategoryService{
		createFn: func(context.Context, string, services.CategoryCommand) (models.Category, error) {
			return models.Category{}, services.ErrForbidden
		},
	})
	body := []byte(`{"name":"Food","type":"expense","is_global":true}`)
	req := httptest.NewRequest(http.MethodPost, "/categories/", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestCategoryInUseMapsTo409(t *testing.T) {
	handler := newTestHandler(stubUserStore{}, stubCategoryService{
		deleteFn: func(context.Context, string, string) error {
			return services.ErrCategoryInUse
		},
	})
	req := httptest.NewRequest(http.MethodDelete, "/categories/cat-1", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}
