package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/service"
)

// VisitHandler covers invites, QR check-in, manual sign-in and the logs
type VisitHandler struct {
	visitService *service.VisitService
}

func NewVisitHandler(visitService *service.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// InviteGuest godoc
// @Summary Invite a guest and get a QR ticket
// @Tags Guests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.InviteGuestRequest true "Invite request"
// @Success 201 {object} model.InviteGuestResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /guests [post]
func (h *VisitHandler) InviteGuest(c *gin.Context) {
	var req model.InviteGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.visitService.Invite(c.Request.Context(), currentUserID(c), currentFlatID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListGuests godoc
// @Summary List the resident's invited guests
// @Tags Guests
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Page offset" default(0)
// @Param status query string false "Filter by visit status"
// @Param search query string false "Search by name or phone"
// @Success 200 {array} model.GuestLogEntry
// @Router /guests [get]
func (h *VisitHandler) ListGuests(c *gin.Context) {
	var q model.GuestListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query", Message: err.Error()})
		return
	}

	entries, err := h.visitService.ListGuests(currentUserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// EditInvite godoc
// @Summary Edit a pending invite
// @Tags Guests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Param body body model.UpdateInviteRequest true "Updated details"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /guests/{id} [put]
func (h *VisitHandler) EditInvite(c *gin.Context) {
	guestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid guest ID"})
		return
	}
	var req model.UpdateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.visitService.EditInvite(c.Request.Context(), currentUserID(c), guestID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Invite updated successfully"})
}

// CancelInvite godoc
// @Summary Cancel a pending invite
// @Tags Guests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /guests/{id} [delete]
func (h *VisitHandler) CancelInvite(c *gin.Context) {
	guestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid guest ID"})
		return
	}

	if err := h.visitService.CancelInvite(c.Request.Context(), currentUserID(c), guestID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Invite cancelled successfully"})
}

// CheckIn godoc
// @Summary Check a guest in by scanning their QR ticket
// @Tags Visits
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.CheckInRequest true "Scanned QR token"
// @Success 200 {object} model.CheckInResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /visits/check-in [post]
func (h *VisitHandler) CheckIn(c *gin.Context) {
	var req model.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.visitService.CheckIn(c.Request.Context(), currentUserID(c), req.QRToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ManualSignIn godoc
// @Summary Record a walk-in guest at the gate desk
// @Tags Visits
// @Accept json
// @Produce json
// @Param body body model.ManualSignInRequest true "Walk-in details"
// @Success 201 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /guests/manual [post]
func (h *VisitHandler) ManualSignIn(c *gin.Context) {
	var req model.ManualSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.visitService.ManualSignIn(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.SuccessResponse{Message: "Sign-in recorded. Awaiting resident approval."})
}

// ManualPending godoc
// @Summary List walk-in requests pending the resident's approval
// @Tags Visits
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.ManualPendingEntry
// @Router /guests/manual-pending [get]
func (h *VisitHandler) ManualPending(c *gin.Context) {
	entries, err := h.visitService.ManualPending(currentFlatID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ApproveManual godoc
// @Summary Approve a pending walk-in request
// @Tags Visits
// @Security BearerAuth
// @Produce json
// @Param visitId path string true "Visit ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /guests/{visitId}/approve-manual [post]
func (h *VisitHandler) ApproveManual(c *gin.Context) {
	visitID, err := uuid.Parse(c.Param("visitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid visit ID"})
		return
	}

	if err := h.visitService.ApproveManual(c.Request.Context(), currentUserID(c), currentFlatID(c), visitID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Visitor approved"})
}

// RejectManual godoc
// @Summary Reject a pending walk-in request
// @Tags Visits
// @Security BearerAuth
// @Produce json
// @Param visitId path string true "Visit ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /guests/{visitId}/reject-manual [post]
func (h *VisitHandler) RejectManual(c *gin.Context) {
	visitID, err := uuid.Parse(c.Param("visitId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid visit ID"})
		return
	}

	if err := h.visitService.RejectManual(c.Request.Context(), currentUserID(c), currentFlatID(c), visitID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Visitor rejected"})
}

// VisitLog godoc
// @Summary Visitor log for security and admin
// @Tags Visits
// @Security BearerAuth
// @Produce json
// @Param filter query string false "today, week or month"
// @Param status query string false "Filter by visit status"
// @Param search query string false "Search by guest name or phone"
// @Success 200 {array} model.VisitLogEntry
// @Router /visits [get]
func (h *VisitHandler) VisitLog(c *gin.Context) {
	var q model.VisitLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query", Message: err.Error()})
		return
	}

	entries, err := h.visitService.VisitLog(q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
