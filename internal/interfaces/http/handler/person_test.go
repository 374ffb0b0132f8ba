package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	peopleapp "github.com/vrm/backend/internal/application/people"
	"github.com/vrm/backend/internal/domain/audit"
	"github.com/vrm/backend/internal/domain/people"
	"github.com/vrm/backend/internal/domain/shared"
	"github.com/vrm/backend/internal/infrastructure/auth"
	"github.com/vrm/backend/internal/interfaces/http/dto"
	"github.com/vrm/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

type mockPersonRepo struct {
	mock.Mock
}

func (m *mockPersonRepo) FindByID(ctx context.Context, id uuid.UUID) (*people.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*people.Person), args.Error(1)
}

func (m *mockPersonRepo) FindAll(ctx context.Context, filter shared.Filter) ([]people.Person, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]people.Person), args.Error(1)
}

func (m *mockPersonRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPersonRepo) FindDuplicates(ctx context.Context, criteria people.DuplicateCriteria, excludeID *uuid.UUID) ([]people.Person, error) {
	args := m.Called(ctx, criteria, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]people.Person), args.Error(1)
}

func (m *mockPersonRepo) Create(ctx context.Context, person *people.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *mockPersonRepo) Save(ctx context.Context, person *people.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditRepo) FindByPerson(ctx context.Context, personID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, personID, filter)
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type passthroughUoW struct {
	persons  people.PersonRepository
	auditLog audit.Repository
}

func (f *passthroughUoW) Do(ctx context.Context, fn func(people.PersonRepository, audit.Repository) error) error {
	return fn(f.persons, f.auditLog)
}

// setupPersonRouter wires a PersonHandler behind a stub auth middleware that
// injects the given role, exercising the same route gating as production.
func setupPersonRouter(svc *peopleapp.PersonService, role auth.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTRoleKey, role)
		c.Next()
	})
	api := r.Group("/api/v1")
	NewPersonHandler(svc).RegisterRoutes(api)
	return r
}

func newHandlerTestService() (*peopleapp.PersonService, *mockPersonRepo, *mockAuditRepo) {
	repo := new(mockPersonRepo)
	auditRepo := new(mockAuditRepo)
	uow := &passthroughUoW{persons: repo, auditLog: auditRepo}
	return peopleapp.NewPersonService(repo, auditRepo, uow, zap.NewNop()), repo, auditRepo
}

func existingPerson(t *testing.T) *people.Person {
	t.Helper()
	p, err := people.NewPerson(people.PersonAttributes{
		FirstName: "Jane",
		LastName:  "Smith",
		City:      "Springfield",
		State:     "CA",
	}, uuid.New())
	require.NoError(t, err)
	return p
}

const createBody = `{"first_name": "Jane", "last_name": "Smith", "email": "jane@example.org"}`

func TestPersonHandlerCreateNoDuplicates(t *testing.T) {
	svc, repo, auditRepo := newHandlerTestService()
	repo.On("FindDuplicates", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return([]people.Person{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("POST", "/api/v1/people", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	repo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPersonHandlerCreateSuspectedDuplicates(t *testing.T) {
	svc, repo, _ := newHandlerTestService()
	match := existingPerson(t)
	repo.On("FindDuplicates", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return([]people.Person{*match}, nil)

	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("POST", "/api/v1/people", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeDuplicateSuspected, resp.Error.Code)
	assert.NotNil(t, resp.Data)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPersonHandlerCreateConfirmedDuplicates(t *testing.T) {
	svc, repo, auditRepo := newHandlerTestService()
	match := existingPerson(t)
	repo.On("FindDuplicates", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return([]people.Person{*match}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	body := `{"first_name": "Jane", "last_name": "Smith", "confirm_duplicates": true}`
	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("POST", "/api/v1/people", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool                          `json:"success"`
		Data    peopleapp.CreatePersonResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Duplicates, 1)
	repo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPersonHandlerCreateMissingName(t *testing.T) {
	svc, repo, _ := newHandlerTestService()

	body := `{"first_name": "Jane"}`
	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("POST", "/api/v1/people", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPersonHandlerCreateForbiddenForVolunteer(t *testing.T) {
	svc, _, _ := newHandlerTestService()

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("POST", "/api/v1/people", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPersonHandlerCheckDuplicates(t *testing.T) {
	svc, repo, _ := newHandlerTestService()
	match := existingPerson(t)
	repo.On("FindDuplicates", mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return([]people.Person{*match}, nil)

	body := `{"first_name": "Jane", "last_name": "Smith"}`
	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("POST", "/api/v1/people/check-duplicates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                      `json:"success"`
		Data    DuplicateSuspectsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Matches, 1)
}

func TestPersonHandlerGetByID(t *testing.T) {
	svc, repo, _ := newHandlerTestService()
	person := existingPerson(t)
	repo.On("FindByID", mock.Anything, person.ID).Return(person, nil)

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("GET", "/api/v1/people/"+person.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane")
}

func TestPersonHandlerGetByIDNotFound(t *testing.T) {
	svc, repo, _ := newHandlerTestService()
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("GET", "/api/v1/people/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
}

func TestPersonHandlerGetByIDInvalidUUID(t *testing.T) {
	svc, _, _ := newHandlerTestService()

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("GET", "/api/v1/people/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonHandlerList(t *testing.T) {
	svc, repo, _ := newHandlerTestService()
	person := existingPerson(t)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]people.Person{*person}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("GET", "/api/v1/people?page=1&page_size=20&state=CA", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestPersonHandlerUpdateAdvisoryDuplicates(t *testing.T) {
	svc, repo, auditRepo := newHandlerTestService()
	person := existingPerson(t)
	other := existingPerson(t)
	repo.On("FindByID", mock.Anything, person.ID).Return(person, nil)
	repo.On("FindDuplicates", mock.Anything, mock.Anything, &person.ID).Return([]people.Person{*other}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("PUT", "/api/v1/people/"+person.ID.String(), strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Updates report duplicates but never block
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                          `json:"success"`
		Data    peopleapp.CreatePersonResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Duplicates, 1)
}

func TestPersonHandlerDeactivate(t *testing.T) {
	svc, repo, auditRepo := newHandlerTestService()
	person := existingPerson(t)
	repo.On("FindByID", mock.Anything, person.ID).Return(person, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	r := setupPersonRouter(svc, auth.RoleAdmin)
	req := httptest.NewRequest("DELETE", "/api/v1/people/"+person.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPersonHandlerDeactivateForbiddenForOrganizer(t *testing.T) {
	svc, _, _ := newHandlerTestService()

	r := setupPersonRouter(svc, auth.RoleOrganizer)
	req := httptest.NewRequest("DELETE", "/api/v1/people/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPersonHandlerHistory(t *testing.T) {
	svc, _, auditRepo := newHandlerTestService()
	person := existingPerson(t)
	entry := audit.NewEntry(audit.Context{ActorID: uuid.New(), RequestID: "req-9"}, audit.ActionCreate, person.ID, "created")
	auditRepo.On("FindByPerson", mock.Anything, person.ID, mock.Anything).Return([]audit.Entry{*entry}, nil)

	r := setupPersonRouter(svc, auth.RoleVolunteer)
	req := httptest.NewRequest("GET", "/api/v1/people/"+person.ID.String()+"/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "req-9")
}
