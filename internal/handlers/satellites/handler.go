package satellites

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/core/services/satellite"
	"gitlab.com/appserver.net/internal/domain"
	"gitlab.com/appserver.net/internal/handlers/response"
)

// SatelliteHandler exposes the coordinator's satellite directory
type SatelliteHandler struct {
	satelliteService satellite.ISatelliteService
	logger           primary.Logger
}

// NewSatelliteHandler creates a new satellite handler
func NewSatelliteHandler(satelliteService satellite.ISatelliteService, logger primary.Logger) *SatelliteHandler {
	return &SatelliteHandler{
		satelliteService: satelliteService,
		logger:           logger,
	}
}

// RegisterRoutes registers the API routes for SatelliteHandler
func (h *SatelliteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/satellites", h.GetSatellites).Methods(http.MethodGet)
	router.HandleFunc("/api/satellites/{name}", h.GetSatellite).Methods(http.MethodGet)
}

// GetSatellites lists registered satellites in registration order
func (h *SatelliteHandler) GetSatellites(w http.ResponseWriter, r *http.Request) {
	satellites, err := h.satelliteService.GetAllSatellites(r.Context())
	if err != nil {
		h.logger.Error("Failed to list satellites", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list satellites", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, map[string][]domain.ConnectivityDescriptor{"satellites": satellites})
}

// GetSatellite returns one satellite by name
func (h *SatelliteHandler) GetSatellite(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	descriptor, err := h.satelliteService.GetSatellite(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrSatelliteNotFound) {
			response.WriteError(w, response.ErrorMessage{Message: "Satellite not found", StatusCode: http.StatusNotFound})
			return
		}
		h.logger.Error("Failed to get satellite", "name", name, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get satellite", StatusCode: http.StatusInternalServerError})
		return
	}

	response.WriteSuccess(w, descriptor)
}
