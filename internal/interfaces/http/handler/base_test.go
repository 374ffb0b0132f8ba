package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrm/backend/internal/domain/people"
	"github.com/vrm/backend/internal/domain/shared"
	"github.com/vrm/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// run executes fn against a fresh test context and returns the recorder.
// prepare, when non-nil, mutates the context before fn runs.
func run(prepare func(*gin.Context), fn func(*BaseHandler, *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	if prepare != nil {
		prepare(c)
	}
	fn(&BaseHandler{}, c)
	return w
}

// decode unmarshals the wire envelope written by the handler.
func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context string",
			setup:      func(c *gin.Context) { c.Set(RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(RequestIDKey, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(RequestIDKey, "ctx-id")
				c.Request.Header.Set(RequestIDKey, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	t.Run("Success wraps data in the envelope", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.Success(c, map[string]string{"key": "value"})
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode(t, w).Success)
	})

	t.Run("SuccessWithMeta carries pagination", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.SuccessWithMeta(c, []string{"item1", "item2"}, 100, 1, 10)
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
		assert.Equal(t, 10, resp.Meta.TotalPages)
	})

	t.Run("Created returns 201", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.Created(c, map[string]string{"id": "123"})
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode(t, w).Success)
	})

	t.Run("NoContent writes an empty 204", func(t *testing.T) {
		r := gin.New()
		r.DELETE("/test", func(c *gin.Context) {
			(&BaseHandler{}).NoContent(c)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("DELETE", "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandlerErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(*BaseHandler, *gin.Context)
		wantCode int
		wantErr  string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid request") },
			http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "Resource not found") },
			http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "Not authenticated") },
			http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"Forbidden", func(h *BaseHandler, c *gin.Context) { h.Forbidden(c, "Access denied") },
			http.StatusForbidden, dto.ErrCodeForbidden},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "Server error") },
			http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := run(nil, tt.fn)

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}

	t.Run("request ID is echoed into the error", func(t *testing.T) {
		w := run(
			func(c *gin.Context) { c.Set(RequestIDKey, "test-request-123") },
			func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid request") },
		)

		assert.Equal(t, "test-request-123", decode(t, w).Error.RequestID)
	})
}

func TestBaseHandlerValidationError(t *testing.T) {
	w := run(
		func(c *gin.Context) { c.Set(RequestIDKey, "val-req-456") },
		func(h *BaseHandler, c *gin.Context) {
			h.ValidationError(c, []dto.ValidationDetail{
				{Field: "email", Message: "Invalid format"},
				{Field: "name", Message: "Required"},
			})
		},
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "val-req-456", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerFieldValidationError(t *testing.T) {
	fieldErrs := people.FieldErrors{}
	fieldErrs.Add("email", "Email address is not valid")
	fieldErrs.Add("zip_code", "Zip code must be 5 or 9 digits")

	w := run(nil, func(h *BaseHandler, c *gin.Context) {
		h.FieldValidationError(c, fieldErrs)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "email", resp.Error.Details[0].Field)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{shared.ErrUnauthorized, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden, dto.ErrCodeForbidden},
		{shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{people.ErrIdentityConflict, http.StatusConflict, dto.ErrCodeIdentityConflict},
	}

	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			w := run(nil, func(h *BaseHandler, c *gin.Context) {
				h.HandleDomainError(c, tt.err)
			})

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}

	t.Run("carries the request ID", func(t *testing.T) {
		w := run(
			func(c *gin.Context) { c.Set(RequestIDKey, "domain-err-req") },
			func(h *BaseHandler, c *gin.Context) { h.HandleDomainError(c, shared.ErrNotFound) },
		)

		assert.Equal(t, "domain-err-req", decode(t, w).Error.RequestID)
	})

	t.Run("field errors become validation details", func(t *testing.T) {
		fieldErrs := people.FieldErrors{}
		fieldErrs.Add("phone", "Phone number could not be parsed")

		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.HandleDomainError(c, fieldErrs)
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "phone")
	})

	t.Run("unknown errors map to 500", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.HandleDomainError(c, assert.AnError)
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	t.Run("nil error writes nothing", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.HandleError(c, nil)
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("wrapped domain errors unwrap", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.HandleError(c, fmt.Errorf("additional context: %w", shared.ErrNotFound))
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("standard errors map to 500", func(t *testing.T) {
		w := run(nil, func(h *BaseHandler, c *gin.Context) {
			h.HandleError(c, assert.AnError)
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestBaseHandlerGetAuditContext(t *testing.T) {
	t.Run("builds context from JWT identity and request ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", nil)
		userID := uuid.New()
		c.Set("jwt_user_id", userID.String())
		c.Set(RequestIDKey, "audit-req-1")

		actx, err := getAuditContext(c)
		require.NoError(t, err)
		assert.Equal(t, userID, actx.ActorID)
		assert.Equal(t, "audit-req-1", actx.RequestID)
	})

	t.Run("fails without an authenticated user", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/", nil)

		_, err := getAuditContext(c)
		assert.Error(t, err)
	})
}
