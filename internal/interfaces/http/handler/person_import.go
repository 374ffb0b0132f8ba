package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	importapp "github.com/vrm/backend/internal/application/import"
	"github.com/vrm/backend/internal/infrastructure/auth"
	csvimport "github.com/vrm/backend/internal/infrastructure/import"
	"github.com/vrm/backend/internal/interfaces/http/dto"
	"github.com/vrm/backend/internal/interfaces/http/middleware"
)

// PersonImportHandler handles person bulk import operations
type PersonImportHandler struct {
	BaseHandler
	importService *importapp.PersonImportService
	maxFileSize   int64
	// validRows keeps validated rows between the validate and import calls
	validRowsStore     map[uuid.UUID][]*csvimport.Row
	validRowsStoreMu   sync.RWMutex
	validRowsCleanupCh chan struct{}
}

// NewPersonImportHandler creates a new PersonImportHandler
func NewPersonImportHandler(importService *importapp.PersonImportService, maxFileSize int64) *PersonImportHandler {
	h := &PersonImportHandler{
		importService:      importService,
		maxFileSize:        maxFileSize,
		validRowsStore:     make(map[uuid.UUID][]*csvimport.Row),
		validRowsCleanupCh: make(chan struct{}),
	}

	go h.cleanupValidRowsStore()

	return h
}

// cleanupValidRowsStore periodically drops rows whose session has expired
func (h *PersonImportHandler) cleanupValidRowsStore() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.validRowsStoreMu.Lock()
			for sessionID := range h.validRowsStore {
				session, _ := h.importService.Session(sessionID)
				if session == nil {
					delete(h.validRowsStore, sessionID)
				}
			}
			h.validRowsStoreMu.Unlock()
		case <-h.validRowsCleanupCh:
			return
		}
	}
}

// Stop stops the background cleanup goroutine
func (h *PersonImportHandler) Stop() {
	close(h.validRowsCleanupCh)
}

// PersonImportRequest represents the request to import validated rows
type PersonImportRequest struct {
	ValidationID string `json:"validation_id" binding:"required"`
	ConflictMode string `json:"conflict_mode" binding:"required,oneof=skip fail"`
}

// acceptedCSVContentTypes lists content types browsers commonly send for CSV uploads
var acceptedCSVContentTypes = map[string]struct{}{
	"text/csv":                 {},
	"application/octet-stream": {},
	"text/plain":               {},
	"application/vnd.ms-excel": {},
}

// ValidatePersons godoc
//
//	@Summary		Validate a person CSV file for import
//	@Description	Validates a person CSV file without importing anything. Returns
//	@Description	a validation ID used by the import call.
//	@Tags			import
//	@ID				validatePersonImport
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV file to validate"
//	@Success		200		{object}	APIResponse[csvimport.ValidationResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/people/validate [post]
func (h *PersonImportHandler) ValidatePersons(c *gin.Context) {
	ctx := c.Request.Context()

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum allowed size")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" {
		if _, ok := acceptedCSVContentTypes[contentType]; !ok {
			h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
			return
		}
	}

	session := csvimport.NewImportSession(actx.ActorID, header.Filename, header.Size)

	result, validRows, err := h.importService.Validate(ctx, session, file)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrEmptyFile):
			h.BadRequest(c, "CSV file is empty")
		case errors.Is(err, csvimport.ErrInvalidEncoding):
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
		case errors.Is(err, csvimport.ErrMissingHeader):
			h.BadRequest(c, "CSV file is missing header row")
		case errors.Is(err, csvimport.ErrFileTooLarge):
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum allowed size")
		default:
			h.InternalError(c, "failed to validate file: "+err.Error())
		}
		return
	}

	if len(validRows) > 0 {
		h.validRowsStoreMu.Lock()
		h.validRowsStore[session.ID] = validRows
		h.validRowsStoreMu.Unlock()
	}

	h.Success(c, result)
}

// ImportPersons godoc
//
//	@Summary		Import people from a validated CSV
//	@Description	Imports people from a previously validated CSV file. Suspected
//	@Description	duplicates are flagged, never blocking; identity conflicts follow
//	@Description	the requested conflict mode.
//	@Tags			import
//	@ID				importPersons
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PersonImportRequest	true	"Import request"
//	@Success		200		{object}	APIResponse[importapp.PersonImportResult]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/people [post]
func (h *PersonImportHandler) ImportPersons(c *gin.Context) {
	ctx := c.Request.Context()

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PersonImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	validationID, err := uuid.Parse(req.ValidationID)
	if err != nil {
		h.BadRequest(c, "Invalid validation_id")
		return
	}

	session, err := h.importService.Session(validationID)
	if err != nil || session == nil {
		h.NotFound(c, "Import session not found or expired")
		return
	}

	// Sessions are private to the actor who started them
	if session.ActorID != actx.ActorID {
		h.NotFound(c, "Import session not found or expired")
		return
	}

	if session.State != csvimport.StateValidated {
		h.BadRequest(c, "Session must be validated before import. Current state: "+string(session.State))
		return
	}

	h.validRowsStoreMu.RLock()
	validRows := h.validRowsStore[validationID]
	h.validRowsStoreMu.RUnlock()

	if len(validRows) == 0 {
		h.BadRequest(c, "No valid rows found for import. Please re-validate the file.")
		return
	}

	result, err := h.importService.Import(ctx, session, validRows, actx, importapp.ConflictMode(req.ConflictMode))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.validRowsStoreMu.Lock()
	delete(h.validRowsStore, validationID)
	h.validRowsStoreMu.Unlock()

	h.Success(c, result)
}

// ImportPersonsFile godoc
//
//	@Summary		Validate and import a person CSV in one call
//	@Description	Runs validation and import in a single request. Intended for
//	@Description	scripted imports where the two-step preview flow is unnecessary.
//	@Tags			import
//	@ID				importPersonsFile
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"CSV file to import"
//	@Param			conflict_mode	formData	string	false	"skip or fail (default skip)"
//	@Success		200				{object}	APIResponse[importapp.PersonImportResult]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		413				{object}	ErrorResponse
//	@Failure		415				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/people/file [post]
func (h *PersonImportHandler) ImportPersonsFile(c *gin.Context) {
	ctx := c.Request.Context()

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum allowed size")
		return
	}

	mode := importapp.ConflictMode(c.PostForm("conflict_mode"))
	if mode == "" {
		mode = importapp.ConflictModeSkip
	}
	if !mode.IsValid() {
		h.BadRequest(c, "Invalid conflict_mode, must be one of: skip, fail")
		return
	}

	_, result, err := h.importService.ImportFile(ctx, header.Filename, header.Size, file, actx, mode)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrEmptyFile):
			h.BadRequest(c, "CSV file is empty")
		case errors.Is(err, csvimport.ErrInvalidEncoding):
			h.BadRequest(c, "CSV file has invalid encoding, must be UTF-8")
		case errors.Is(err, csvimport.ErrMissingHeader):
			h.BadRequest(c, "CSV file is missing header row")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Success(c, result)
}

// GetImportSession godoc
//
//	@Summary		Get an import session
//	@Description	Returns the state of an import session started by the caller
//	@Tags			import
//	@ID				getImportSession
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	APIResponse[csvimport.ImportSession]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/import/people/sessions/{id} [get]
func (h *PersonImportHandler) GetImportSession(c *gin.Context) {
	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	session, err := h.importService.Session(id)
	if err != nil || session == nil || session.ActorID != actx.ActorID {
		h.NotFound(c, "Import session not found or expired")
		return
	}

	h.Success(c, session)
}

// ListImportSessions godoc
//
//	@Summary		List the caller's import sessions
//	@Description	Returns recent import sessions started by the caller, newest first
//	@Tags			import
//	@ID				listImportSessions
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]csvimport.ImportSession]
//	@Security		BearerAuth
//	@Router			/import/people/sessions [get]
func (h *PersonImportHandler) ListImportSessions(c *gin.Context) {
	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	sessions, err := h.importService.SessionsForActor(actx.ActorID, 20)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sessions)
}

// RegisterRoutes registers all person import routes.
// Bulk imports create records, so the whole group requires organizer or above.
func (h *PersonImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/import", middleware.RequireRole(auth.RoleOrganizer))
	{
		imports.POST("/people/validate", h.ValidatePersons)
		imports.POST("/people", h.ImportPersons)
		imports.POST("/people/file", h.ImportPersonsFile)
		imports.GET("/people/sessions", h.ListImportSessions)
		imports.GET("/people/sessions/:id", h.GetImportSession)
	}
}
