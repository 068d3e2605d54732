package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/service"
)

// PublicHandler serves the unauthenticated lookups behind the registration
// form and the gate-desk kiosk
type PublicHandler struct {
	adminService *service.AdminService
}

func NewPublicHandler(adminService *service.AdminService) *PublicHandler {
	return &PublicHandler{adminService: adminService}
}

// ListApartments godoc
// @Summary List apartments for the registration dropdown
// @Tags Public
// @Produce json
// @Success 200 {array} model.Apartment
// @Router /apartments [get]
func (h *PublicHandler) ListApartments(c *gin.Context) {
	apartments, err := h.adminService.ListApartments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apartments)
}

// ListBlocks godoc
// @Summary List an apartment's blocks
// @Tags Public
// @Produce json
// @Param id path string true "Apartment ID"
// @Success 200 {array} model.Block
// @Router /apartments/{id}/blocks [get]
func (h *PublicHandler) ListBlocks(c *gin.Context) {
	apartmentID, ok := pathID(c)
	if !ok {
		return
	}
	blocks, err := h.adminService.ListBlocks(apartmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

// ListFlats godoc
// @Summary List flats, optionally scoped to an apartment
// @Tags Public
// @Produce json
// @Param apartment_id query string false "Apartment ID"
// @Success 200 {array} model.Flat
// @Router /flats [get]
func (h *PublicHandler) ListFlats(c *gin.Context) {
	var apartmentID *uuid.UUID
	if raw := c.Query("apartment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid apartment ID"})
			return
		}
		apartmentID = &id
	}

	flats, err := h.adminService.ListFlats(apartmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flats)
}
