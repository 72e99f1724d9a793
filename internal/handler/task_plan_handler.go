package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/service"
	"taskventure.app/backend/pkg/response"
	"taskventure.app/backend/pkg/validator"
)

type TaskPlanHandler struct {
	service service.TaskPlanService
}

func NewTaskPlanHandler(service service.TaskPlanService) *TaskPlanHandler {
	return &TaskPlanHandler{service: service}
}

func (h *TaskPlanHandler) CreatePlan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateTaskPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TaskPlanHandler) ListPlans(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	plans, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

func (h *TaskPlanHandler) GetPlan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.service.Get(c.Request.Context(), userID, planID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *TaskPlanHandler) UpdatePlan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	plan, err := h.service.Update(c.Request.Context(), userID, planID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *TaskPlanHandler) DeletePlan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, planID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task plan deleted successfully"})
}

func (h *TaskPlanHandler) PausePlan(c *gin.Context) {
	h.setStatus(c, model.PlanPaused)
}

func (h *TaskPlanHandler) ActivatePlan(c *gin.Context) {
	h.setStatus(c, model.PlanActive)
}

func (h *TaskPlanHandler) CompletePlan(c *gin.Context) {
	h.setStatus(c, model.PlanCompleted)
}

func (h *TaskPlanHandler) setStatus(c *gin.Context, status model.TaskPlanStatus) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.service.SetStatus(c.Request.Context(), userID, planID, status)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GeneratePlan forces one recurrence check outside the scheduled sweep.
func (h *TaskPlanHandler) GeneratePlan(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	planID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	plan, err := h.service.GenerateNow(c.Request.Context(), userID, planID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
