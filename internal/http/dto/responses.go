package dto

import "github.com/dash-ai/backend/internal/models"

type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
}

type BlueprintResponse struct {
	Draft      *models.Draft `json:"draft"`
	ReviewPath string        `json:"review_path"`
}

type DecisionResponse struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect"`
}

type MetaResponse struct {
	Values []string `json:"values"`
}
