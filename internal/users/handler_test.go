package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/shared"
	"github.com/billfold/billfold/internal/users"
	_ "github.com/billfold/billfold/testing"
)

type mockRepository struct {
	profiles  map[int64]*users.Profile
	lastInput users.UpdateProfileInput
}

func newMockRepository() *mockRepository {
	return &mockRepository{profiles: map[int64]*users.Profile{
		7: {
			ID:              7,
			Name:            "Maya",
			Email:           "maya@example.com",
			BusinessName:    "Maya Design Co",
			BusinessAddress: "14 MG Road, Bengaluru",
			Phone:           "+91 98765 43210",
			CreatedAt:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}}
}

func (m *mockRepository) GetProfile(ctx context.Context, id int64) (*users.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) UpdateProfile(ctx context.Context, id int64, input users.UpdateProfileInput) (*users.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.lastInput = input
	// Empty strings leave the stored value untouched, as the SQL layer does.
	if input.Name != "" {
		p.Name = input.Name
	}
	if input.BusinessName != "" {
		p.BusinessName = input.BusinessName
	}
	if input.BusinessAddress != "" {
		p.BusinessAddress = input.BusinessAddress
	}
	if input.Phone != "" {
		p.Phone = input.Phone
	}
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func newUsersRouter(repo *mockRepository, userID int64) chi.Router {
	handler := users.NewHandler(nil, users.NewService(repo))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			if userID != 0 {
				sess.SetUser(userID)
			}
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return r
}

func TestGetProfile(t *testing.T) {
	router := newUsersRouter(newMockRepository(), 7)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"maya@example.com"`)
	assert.Contains(t, res.Body.String(), `"Maya Design Co"`)
}

func TestGetProfileMissingUser(t *testing.T) {
	router := newUsersRouter(newMockRepository(), 99)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestGetProfileRequiresLogin(t *testing.T) {
	router := newUsersRouter(newMockRepository(), 0)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockRepository()
	router := newUsersRouter(repo, 7)

	body := `{"businessName":"Billfold Studio","phone":"+91 90000 00000"}`
	req := httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Billfold Studio", repo.profiles[7].BusinessName)
	assert.Equal(t, "+91 90000 00000", repo.profiles[7].Phone)
	// Omitted fields arrive empty and leave stored values alone.
	assert.Empty(t, repo.lastInput.Name)
	assert.Equal(t, "Maya", repo.profiles[7].Name)
	assert.Contains(t, res.Body.String(), `"Billfold Studio"`)
}

func TestUpdateProfileRejectsShortName(t *testing.T) {
	repo := newMockRepository()
	router := newUsersRouter(repo, 7)

	body := `{"name":"x"}`
	req := httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Maya", repo.profiles[7].Name)
}
