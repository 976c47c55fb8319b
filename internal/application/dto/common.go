package dto

// ErrorResponse cuerpo de error HTTP (endpoints JSON: health, métricas de error).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse estado del servicio.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
