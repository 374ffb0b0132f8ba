package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	peopleapp "github.com/vrm/backend/internal/application/people"
	"github.com/vrm/backend/internal/domain/shared"
	"github.com/vrm/backend/internal/infrastructure/auth"
	"github.com/vrm/backend/internal/interfaces/http/dto"
	"github.com/vrm/backend/internal/interfaces/http/middleware"
)

// PersonHandler handles person-related API endpoints
type PersonHandler struct {
	BaseHandler
	service *peopleapp.PersonService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(service *peopleapp.PersonService) *PersonHandler {
	return &PersonHandler{service: service}
}

// RegisterRoutes registers person routes on the given group.
// Reads are open to any authenticated staff member; creation requires
// organizer or above, and deactivation is admin-only.
func (h *PersonHandler) RegisterRoutes(rg *gin.RouterGroup) {
	people := rg.Group("/people")
	{
		people.GET("", h.List)
		people.GET("/:id", h.GetByID)
		people.GET("/:id/history", h.History)
		people.POST("/check-duplicates", h.CheckDuplicates)

		organizer := people.Group("", middleware.RequireRole(auth.RoleOrganizer))
		{
			organizer.POST("", h.Create)
			organizer.PUT("/:id", h.Update)
			organizer.POST("/:id/reactivate", h.Reactivate)
		}

		admin := people.Group("", middleware.RequireRole(auth.RoleAdmin))
		{
			admin.DELETE("/:id", h.Deactivate)
		}
	}
}

// Create godoc
// @ID           createPerson
// @Summary      Create a person
// @Description  Creates a person record. Without confirm_duplicates the request
// @Description  first runs a duplicate check and returns 409 with the suspected
// @Description  matches; with confirm_duplicates the record is created and any
// @Description  matches are returned as an advisory list.
// @Tags         people
// @Accept       json
// @Produce      json
// @Param        request body CreatePersonRequest true "Person data"
// @Success      201 {object} APIResponse[peopleapp.CreatePersonResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /people [post]
func (h *PersonHandler) Create(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	appReq := req.toApp()

	if !req.ConfirmDuplicates {
		matches, err := h.service.CheckDuplicates(c.Request.Context(), appReq)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		if len(matches) > 0 {
			c.JSON(http.StatusConflict, dto.Response{
				Success: false,
				Data:    DuplicateSuspectsResponse{Matches: matches},
				Error: dto.NewErrorResponseWithRequestID(
					dto.ErrCodeDuplicateSuspected,
					"Possible duplicate records found; resubmit with confirm_duplicates to proceed",
					getRequestID(c),
				).Error,
			})
			return
		}
		result, err := h.service.Create(c.Request.Context(), appReq, actx, false)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Created(c, result)
		return
	}

	result, err := h.service.Create(c.Request.Context(), appReq, actx, true)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, result)
}

// CheckDuplicates godoc
// @ID           checkPersonDuplicates
// @Summary      Check for duplicate persons
// @Description  Runs the duplicate detection pass without creating anything
// @Tags         people
// @Accept       json
// @Produce      json
// @Param        request body CheckDuplicatesRequest true "Identity fields"
// @Success      200 {object} APIResponse[DuplicateSuspectsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /people/check-duplicates [post]
func (h *PersonHandler) CheckDuplicates(c *gin.Context) {
	var req CheckDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	matches, err := h.service.CheckDuplicates(c.Request.Context(), req.toApp())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, DuplicateSuspectsResponse{Matches: matches})
}

// GetByID godoc
// @ID           getPerson
// @Summary      Get a person by ID
// @Tags         people
// @Produce      json
// @Param        id path string true "Person ID"
// @Success      200 {object} APIResponse[peopleapp.PersonResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /people/{id} [get]
func (h *PersonHandler) GetByID(c *gin.Context) {
	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	person, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, person)
}

// List godoc
// @ID           listPersons
// @Summary      List persons
// @Description  Lists person records with pagination, search and filters
// @Tags         people
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size (max 100)"
// @Param        search query string false "Search across name, email and city"
// @Param        state query string false "Filter by state code"
// @Param        city query string false "Filter by city"
// @Param        tag query string false "Filter by tag"
// @Param        include_inactive query bool false "Include deactivated records"
// @Success      200 {object} APIResponse[[]peopleapp.PersonResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /people [get]
func (h *PersonHandler) List(c *gin.Context) {
	var query ListPersonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := query.toFilter()
	persons, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, persons, total, page, pageSize)
}

// Update godoc
// @ID           updatePerson
// @Summary      Update a person
// @Description  Replaces a person record. Duplicate matches against other
// @Description  records are returned as an advisory list and never block.
// @Tags         people
// @Accept       json
// @Produce      json
// @Param        id path string true "Person ID"
// @Param        request body UpdatePersonRequest true "Person data"
// @Success      200 {object} APIResponse[peopleapp.CreatePersonResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /people/{id} [put]
func (h *PersonHandler) Update(c *gin.Context) {
	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.service.Update(c.Request.Context(), id, req.toApp(), actx, true)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Deactivate godoc
// @ID           deactivatePerson
// @Summary      Deactivate a person
// @Description  Soft-deletes a person record; history is preserved
// @Tags         people
// @Produce      json
// @Param        id path string true "Person ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /people/{id} [delete]
func (h *PersonHandler) Deactivate(c *gin.Context) {
	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, actx); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Reactivate godoc
// @ID           reactivatePerson
// @Summary      Reactivate a person
// @Description  Restores a previously deactivated person record
// @Tags         people
// @Produce      json
// @Param        id path string true "Person ID"
// @Success      200 {object} APIResponse[peopleapp.PersonResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /people/{id}/reactivate [post]
func (h *PersonHandler) Reactivate(c *gin.Context) {
	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	actx, err := getAuditContext(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.service.Reactivate(c.Request.Context(), id, actx); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	person, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, person)
}

// History godoc
// @ID           getPersonHistory
// @Summary      Get a person's audit history
// @Description  Returns the audit trail for a person, newest first
// @Tags         people
// @Produce      json
// @Param        id path string true "Person ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]audit.Entry]
// @Failure      404 {object} ErrorResponse
// @Router       /people/{id}/history [get]
func (h *PersonHandler) History(c *gin.Context) {
	id, err := h.parseUUID(c, "id")
	if err != nil {
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entries, err := h.service.History(c.Request.Context(), id, shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, entries)
}
