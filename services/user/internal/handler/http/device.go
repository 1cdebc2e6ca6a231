package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Azizo-B/microservices/pkg/httputil"
	"github.com/Azizo-B/microservices/services/user/internal/domain"
	"github.com/Azizo-B/microservices/services/user/internal/service"
)

// DeviceHandler handles HTTP requests for device endpoints.
type DeviceHandler struct {
	service *service.DeviceService
	logger  *slog.Logger
}

// NewDeviceHandler creates a new device HTTP handler.
func NewDeviceHandler(svc *service.DeviceService, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{service: svc, logger: logger}
}

// List handles GET /api/devices. Without a userId query the requester's own
// devices are listed.
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.ListDevices(r.Context(), UserIDFromContext(r.Context()), r.URL.Query().Get("userId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: httputil.ListResponse[domain.Device]{Items: devices}})
}

// Get handles GET /api/devices/{id}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	device, err := h.service.GetDevice(r.Context(), UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: device})
}
