package handler

import "github.com/vrm/backend/internal/interfaces/http/dto"

// APIResponse is the typed success envelope referenced by the OpenAPI
// annotations. Handlers serialize dto.Response directly; this type only
// exists so swag can describe the data field per endpoint.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the error envelope referenced by the OpenAPI annotations.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
