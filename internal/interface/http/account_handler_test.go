package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-rest-service/internal/application"
	"github.com/oksasatya/account-rest-service/internal/domain/entity"
	"github.com/oksasatya/account-rest-service/internal/infrastructure/memory"
	"github.com/oksasatya/account-rest-service/pkg/validation"
)

func newTestRouter(svc AccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	h := NewAccountHandler(svc, nil)
	r := gin.New()
	r.POST("/accounts", h.Create)
	r.GET("/accounts", h.List)
	r.GET("/accounts/:id", h.Get)
	r.PUT("/accounts/:id", h.Update)
	r.DELETE("/accounts/:id", h.Delete)
	r.GET("/search/accounts", h.Search)
	return r
}

func newMemoryRouter() *gin.Engine {
	return newTestRouter(application.NewService(memory.NewAccountRepository(), nil, nil, nil))
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestAccountHandler_CreateAndRead(t *testing.T) {
	r := newMemoryRouter()

	w := send(r, http.MethodPost, "/accounts", `{"name":"Alice","email":"alice@example.com","phone_number":"555-0100","extra":"ignored"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)

	id, ok := created["id"].(float64)
	require.True(t, ok, "id must be an integer")
	assert.Equal(t, "Alice", created["name"])
	assert.Equal(t, "555-0100", created["phone_number"])
	assert.Nil(t, created["address"])
	assert.Equal(t, false, created["disabled"])
	assert.NotEmpty(t, created["date_joined"])
	assert.NotContains(t, created, "extra")

	w = send(r, http.MethodGet, "/accounts/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	read := decode(t, w)
	assert.Equal(t, id, read["id"])
	assert.Equal(t, created, read)
}

func TestAccountHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty body", "", "No data provided"},
		{"null", "null", "No data provided"},
		{"empty object", "{}", "No data provided"},
		{"malformed", `{"name":`, "Invalid JSON format"},
		{"array", `[{"name":"A"}]`, "Invalid JSON format"},
		{"string", `"hello"`, "Invalid JSON format"},
		{"missing name", `{"email":"a@example.com"}`, "Missing required field: 'name'"},
		{"missing email", `{"name":"A"}`, "Missing required field: 'email'"},
		{"blank name", `{"name":"  ","email":"a@example.com"}`, "Missing required field: 'name'"},
		{"wrong type", `{"name":"A","email":"a@example.com","disabled":"yes"}`, "disabled must be a boolean"},
		{"email too long", `{"name":"A","email":"` + strings.Repeat("e", 121) + `"}`, "email must be at most 120 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newMemoryRouter()
			w := send(r, http.MethodPost, "/accounts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["error"])
		})
	}
}

func TestAccountHandler_DuplicateEmail(t *testing.T) {
	r := newMemoryRouter()

	w := send(r, http.MethodPost, "/accounts", `{"name":"First","email":"dup@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(r, http.MethodPost, "/accounts", `{"name":"Second","email":"dup@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account with this email already exists", decode(t, w)["error"])

	w = send(r, http.MethodGet, "/accounts/1", "")
	assert.Equal(t, "First", decode(t, w)["name"])
}

func TestAccountHandler_EmailIsTrimmedNotFormatChecked(t *testing.T) {
	r := newMemoryRouter()

	w := send(r, http.MethodPost, "/accounts", `{"name":"Pad","email":"  pad@example.com "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pad@example.com", decode(t, w)["email"])

	w = send(r, http.MethodPost, "/accounts", `{"name":"Loose","email":"nope"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "nope", decode(t, w)["email"])

	w = send(r, http.MethodPut, "/accounts/2", `{"name":"Loose","email":" pad@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account with this email already exists", decode(t, w)["error"])
}

func TestAccountHandler_ListEmpty(t *testing.T) {
	w := send(newMemoryRouter(), http.MethodGet, "/accounts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAccountHandler_List(t *testing.T) {
	r := newMemoryRouter()
	send(r, http.MethodPost, "/accounts", `{"name":"A","email":"a@example.com"}`)
	send(r, http.MethodPost, "/accounts", `{"name":"B","email":"b@example.com"}`)

	w := send(r, http.MethodGet, "/accounts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "a@example.com", list[0]["email"])
	assert.Equal(t, "b@example.com", list[1]["email"])
}

func TestAccountHandler_GetNotFound(t *testing.T) {
	r := newMemoryRouter()

	w := send(r, http.MethodGet, "/accounts/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Account with id 99 not found", decode(t, w)["error"])

	w = send(r, http.MethodGet, "/accounts/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Account with id abc not found", decode(t, w)["error"])
}

func TestAccountHandler_Update(t *testing.T) {
	r := newMemoryRouter()
	send(r, http.MethodPost, "/accounts", `{"name":"Old","email":"old@example.com","address":"1 Road"}`)

	w := send(r, http.MethodPut, "/accounts/1", `{"name":"New","email":"new@example.com","disabled":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, float64(1), got["id"])
	assert.Equal(t, "New", got["name"])
	assert.Equal(t, true, got["disabled"])
	assert.Nil(t, got["address"])
}

func TestAccountHandler_UpdateDuplicateEmail(t *testing.T) {
	r := newMemoryRouter()
	send(r, http.MethodPost, "/accounts", `{"name":"A","email":"a@example.com"}`)
	send(r, http.MethodPost, "/accounts", `{"name":"B","email":"b@example.com"}`)

	w := send(r, http.MethodPut, "/accounts/2", `{"name":"B","email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account with this email already exists", decode(t, w)["error"])

	w = send(r, http.MethodGet, "/accounts/2", "")
	assert.Equal(t, "b@example.com", decode(t, w)["email"])

	w = send(r, http.MethodPut, "/accounts/2", `{"name":"B2","email":"b@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code, "keeping its own email is not a conflict")
}

func TestAccountHandler_UpdateMissingFieldLeavesRecord(t *testing.T) {
	r := newMemoryRouter()
	send(r, http.MethodPost, "/accounts", `{"name":"Keep","email":"keep@example.com"}`)

	w := send(r, http.MethodPut, "/accounts/1", `{"name":"Changed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Missing")

	w = send(r, http.MethodGet, "/accounts/1", "")
	got := decode(t, w)
	assert.Equal(t, "Keep", got["name"])
	assert.Equal(t, "keep@example.com", got["email"])
}

func TestAccountHandler_UpdateNotFoundBeforeBody(t *testing.T) {
	r := newMemoryRouter()

	w := send(r, http.MethodPut, "/accounts/5", `{"name":"X","email":"x@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(r, http.MethodPut, "/accounts/5", `not json`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Account with id 5 not found", decode(t, w)["error"])
}

func TestAccountHandler_Delete(t *testing.T) {
	r := newMemoryRouter()
	send(r, http.MethodPost, "/accounts", `{"name":"Gone","email":"gone@example.com"}`)

	for _, path := range []string{"/accounts/1", "/accounts/1", "/accounts/424242", "/accounts/xyz"} {
		w := send(r, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Empty(t, w.Body.String())
	}

	w := send(r, http.MethodGet, "/accounts/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// mockService lets a test replace one operation.
type mockService struct {
	AccountService
	createFn func(ctx context.Context, in entity.AccountInput) (*entity.Account, error)
	getFn    func(ctx context.Context, id int64) (*entity.Account, error)
	updateFn func(ctx context.Context, id int64, in entity.AccountInput) (*entity.Account, error)
	listFn   func(ctx context.Context) ([]*entity.Account, error)
	searchFn func(ctx context.Context, q string, size int) ([]map[string]any, error)
}

func (m *mockService) Create(ctx context.Context, in entity.AccountInput) (*entity.Account, error) {
	return m.createFn(ctx, in)
}

func (m *mockService) Get(ctx context.Context, id int64) (*entity.Account, error) {
	return m.getFn(ctx, id)
}

func (m *mockService) Update(ctx context.Context, id int64, in entity.AccountInput) (*entity.Account, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockService) List(ctx context.Context) ([]*entity.Account, error) {
	return m.listFn(ctx)
}

func (m *mockService) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return m.searchFn(ctx, q, size)
}

func TestAccountHandler_StoreErrorIs500(t *testing.T) {
	storeDown := errors.New("connection refused")
	existing := &entity.Account{ID: 1, Name: "A", Email: "a@example.com"}
	body := `{"name":"A","email":"a@example.com"}`

	tests := []struct {
		name   string
		svc    *mockService
		method string
		path   string
		body   string
	}{
		{
			name: "list",
			svc: &mockService{listFn: func(context.Context) ([]*entity.Account, error) {
				return nil, storeDown
			}},
			method: http.MethodGet, path: "/accounts",
		},
		{
			name: "create",
			svc: &mockService{createFn: func(context.Context, entity.AccountInput) (*entity.Account, error) {
				return nil, storeDown
			}},
			method: http.MethodPost, path: "/accounts", body: body,
		},
		{
			name: "get",
			svc: &mockService{getFn: func(context.Context, int64) (*entity.Account, error) {
				return nil, storeDown
			}},
			method: http.MethodGet, path: "/accounts/1",
		},
		{
			name: "update lookup",
			svc: &mockService{getFn: func(context.Context, int64) (*entity.Account, error) {
				return nil, storeDown
			}},
			method: http.MethodPut, path: "/accounts/1", body: body,
		},
		{
			name: "update write",
			svc: &mockService{
				getFn: func(context.Context, int64) (*entity.Account, error) { return existing, nil },
				updateFn: func(context.Context, int64, entity.AccountInput) (*entity.Account, error) {
					return nil, storeDown
				},
			},
			method: http.MethodPut, path: "/accounts/1", body: body,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(newTestRouter(tt.svc), tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
		})
	}
}

func TestAccountHandler_Search(t *testing.T) {
	var gotQ string
	var gotSize int
	r := newTestRouter(&mockService{
		searchFn: func(_ context.Context, q string, size int) ([]map[string]any, error) {
			gotQ, gotSize = q, size
			return []map[string]any{{"id": 1, "name": "Alice"}}, nil
		},
	})

	w := send(r, http.MethodGet, "/search/accounts?q=ali&size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Alice"}]`, w.Body.String())
	assert.Equal(t, "ali", gotQ)
	assert.Equal(t, 5, gotSize)

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"missing q", "/search/accounts", "q is required"},
		{"size too big", "/search/accounts?q=a&size=500", "size must be at most 50"},
		{"size not a number", "/search/accounts?q=a&size=many", "Invalid query parameters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(r, http.MethodGet, tt.path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, decode(t, w)["error"])
		})
	}
}
