package api

import (
	"net/http"

	"github.com/taskhub/taskhub-api/internal/api/shared"
)

// HealthResponse is the payload returned by the root endpoint.
type HealthResponse struct {
	Message string `json:"message"`
}

// Health handles GET / requests. It answers unconditionally so load
// balancers can probe liveness without credentials.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Message: "Task Management API is running",
	})
}
