package directory

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drbooking/booking-api/internal/service/availability"
	"github.com/drbooking/booking-api/internal/service/directory"
	apperrors "github.com/drbooking/booking-api/pkg/errors"
	"github.com/drbooking/booking-api/pkg/httputil"
)

const dateLayout = "2006-01-02"

// Handler serves the public doctor/specialty catalog and per-day slot
// availability.
type Handler struct {
	directory    *directory.Service
	availability *availability.Service
}

func NewHandler(dir *directory.Service, avail *availability.Service) *Handler {
	return &Handler{
		directory:    dir,
		availability: avail,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/specialties", h.ListSpecialties)

	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/availabilities", h.GetAvailabilities)
	}
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.directory.ListSpecialties(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	specialtyID := uuid.Nil
	if raw := c.Query("specialty_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid specialty ID", err))
			return
		}
		specialtyID = id
	}

	doctors, err := h.directory.ListDoctors(c.Request.Context(), specialtyID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	doctor, err := h.directory.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

// GetAvailabilities returns the day's slots for a doctor. The date query
// parameter is required and must be YYYY-MM-DD.
func (h *Handler) GetAvailabilities(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	raw := c.Query("date")
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidDate(raw, err))
		return
	}

	slots, err := h.availability.GetSlots(c.Request.Context(), id, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}
