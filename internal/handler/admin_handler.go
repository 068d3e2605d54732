package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/service"
)

// AdminHandler covers user approval and the housing hierarchy console
type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// ==================== User approval ====================

// PendingUsers godoc
// @Summary List resident registrations awaiting approval
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.User
// @Router /admin/users/pending [get]
func (h *AdminHandler) PendingUsers(c *gin.Context) {
	users, err := h.adminService.PendingUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ApproveUser godoc
// @Summary Approve a pending registration
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/users/{id}/approve [post]
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.adminService.ApproveUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "User approved", Data: user.ToResponse()})
}

// RejectUser godoc
// @Summary Reject and delete a pending registration
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/users/{id}/reject [post]
func (h *AdminHandler) RejectUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.RejectUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "User rejected"})
}

// ==================== Apartments ====================

// CreateApartment godoc
// @Summary Create an apartment complex
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.CreateApartmentRequest true "Apartment"
// @Success 201 {object} model.Apartment
// @Router /admin/apartments [post]
func (h *AdminHandler) CreateApartment(c *gin.Context) {
	var req model.CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	apartment, err := h.adminService.CreateApartment(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apartment)
}

// UpdateApartment godoc
// @Summary Rename an apartment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Param body body model.CreateApartmentRequest true "New name"
// @Success 200 {object} model.Apartment
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/apartments/{id} [put]
func (h *AdminHandler) UpdateApartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	apartment, err := h.adminService.UpdateApartment(id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apartment)
}

// DeleteApartment godoc
// @Summary Delete an apartment
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Apartment ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/apartments/{id} [delete]
func (h *AdminHandler) DeleteApartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteApartment(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Apartment deleted"})
}

// ==================== Blocks ====================

// CreateBlock godoc
// @Summary Add a block to an apartment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Param body body model.CreateBlockRequest true "Block"
// @Success 201 {object} model.Block
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/apartments/{id}/blocks [post]
func (h *AdminHandler) CreateBlock(c *gin.Context) {
	apartmentID, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	block, err := h.adminService.CreateBlock(apartmentID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

// ListBlocks godoc
// @Summary List an apartment's blocks
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Apartment ID"
// @Success 200 {array} model.Block
// @Router /admin/apartments/{id}/blocks [get]
func (h *AdminHandler) ListBlocks(c *gin.Context) {
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

// UpdateBlock godoc
// @Summary Rename a block
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param body body model.CreateBlockRequest true "New name"
// @Success 200 {object} model.Block
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/blocks/{id} [put]
func (h *AdminHandler) UpdateBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	block, err := h.adminService.UpdateBlock(id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

// DeleteBlock godoc
// @Summary Delete a block
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/blocks/{id} [delete]
func (h *AdminHandler) DeleteBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteBlock(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Block deleted"})
}

// ==================== Flats ====================

// CreateFlatInBlock godoc
// @Summary Add a flat under a block
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param body body model.CreateFlatRequest true "Flat"
// @Success 201 {object} model.Flat
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/blocks/{id}/flats [post]
func (h *AdminHandler) CreateFlatInBlock(c *gin.Context) {
	blockID, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	flat, err := h.adminService.CreateFlatInBlock(blockID, req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flat)
}

// CreateFlatInApartment godoc
// @Summary Add a flat directly under an apartment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Apartment ID"
// @Param body body model.CreateFlatRequest true "Flat"
// @Success 201 {object} model.Flat
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/apartments/{id}/flats [post]
func (h *AdminHandler) CreateFlatInApartment(c *gin.Context) {
	apartmentID, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	flat, err := h.adminService.CreateFlatInApartment(apartmentID, req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flat)
}

// ListFlatsByBlock godoc
// @Summary List a block's flats
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {array} model.Flat
// @Router /admin/blocks/{id}/flats [get]
func (h *AdminHandler) ListFlatsByBlock(c *gin.Context) {
	blockID, ok := pathID(c)
	if !ok {
		return
	}
	flats, err := h.adminService.ListFlatsByBlock(blockID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flats)
}

// UpdateFlat godoc
// @Summary Rename a flat
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Flat ID"
// @Param body body model.CreateFlatRequest true "New number"
// @Success 200 {object} model.Flat
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/flats/{id} [put]
func (h *AdminHandler) UpdateFlat(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.CreateFlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	flat, err := h.adminService.UpdateFlat(id, req.Number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flat)
}

// DeleteFlat godoc
// @Summary Delete a flat
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Flat ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/flats/{id} [delete]
func (h *AdminHandler) DeleteFlat(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteFlat(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Flat deleted"})
}

// ==================== Security guards ====================

// CreateGuard godoc
// @Summary Provision a security guard account
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.CreateGuardRequest true "Guard"
// @Success 201 {object} model.UserResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/guards [post]
func (h *AdminHandler) CreateGuard(c *gin.Context) {
	var req model.CreateGuardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	guard, err := h.adminService.CreateGuard(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, guard.ToResponse())
}

// ListGuards godoc
// @Summary List security guard accounts
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.User
// @Router /admin/guards [get]
func (h *AdminHandler) ListGuards(c *gin.Context) {
	guards, err := h.adminService.ListGuards()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guards)
}

// UpdateGuard godoc
// @Summary Update a guard's contact details
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Guard ID"
// @Param body body model.UpdateGuardRequest true "New details"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/guards/{id} [put]
func (h *AdminHandler) UpdateGuard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.UpdateGuardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if err := h.adminService.UpdateGuard(id, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Guard updated"})
}

// DeleteGuard godoc
// @Summary Delete a guard account
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Guard ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/guards/{id} [delete]
func (h *AdminHandler) DeleteGuard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteGuard(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Guard deleted"})
}

// ==================== Users ====================

// ListUsers godoc
// @Summary List users with role and search filters
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param role query string false "resident, admin or security"
// @Param search query string false "Search by name or phone"
// @Success 200 {array} model.AdminUserEntry
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q model.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid query", Message: err.Error()})
		return
	}
	users, err := h.adminService.ListUsers(q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Edit a user's details and housing assignment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body model.UpdateUserRequest true "New details"
// @Success 200 {object} model.UserResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	user, err := h.adminService.UpdateUser(id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "User deleted"})
}
