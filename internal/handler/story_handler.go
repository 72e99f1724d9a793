package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/service"
	"taskventure.app/backend/pkg/response"
	"taskventure.app/backend/pkg/validator"
)

type StoryHandler struct {
	service service.StoryService
}

func NewStoryHandler(service service.StoryService) *StoryHandler {
	return &StoryHandler{service: service}
}

func (h *StoryHandler) CreateStory(c *gin.Context) {
	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	story, err := h.service.CreateStory(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	var filter dto.StoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	stories, err := h.service.ListStories(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stories)
}

func (h *StoryHandler) GetStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	story, err := h.service.GetStory(c.Request.Context(), storyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) UpdateStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	story, err := h.service.UpdateStory(c.Request.Context(), storyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) DeleteStory(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStory(c.Request.Context(), storyID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "story deleted successfully"})
}

func (h *StoryHandler) CreateChapter(c *gin.Context) {
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	chapter, err := h.service.CreateChapter(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

func (h *StoryHandler) ListChapters(c *gin.Context) {
	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	chapters, err := h.service.ListChapters(c.Request.Context(), storyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, chapters)
}

func (h *StoryHandler) GetChapter(c *gin.Context) {
	chapterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	chapter, err := h.service.GetChapter(c.Request.Context(), chapterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

func (h *StoryHandler) UpdateChapter(c *gin.Context) {
	chapterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	chapter, err := h.service.UpdateChapter(c.Request.Context(), chapterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

func (h *StoryHandler) DeleteChapter(c *gin.Context) {
	chapterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteChapter(c.Request.Context(), chapterID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chapter deleted successfully"})
}

func (h *StoryHandler) CreateChoice(c *gin.Context) {
	var req dto.CreateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	choice, err := h.service.CreateChoice(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, choice)
}

func (h *StoryHandler) UnlockStory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userStory, err := h.service.Unlock(c.Request.Context(), userID, storyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userStory)
}

func (h *StoryHandler) MyStories(c *gin.Context) {
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

	stories, err := h.service.MyStories(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stories)
}

func (h *StoryHandler) MyStory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	userStory, err := h.service.MyStory(c.Request.Context(), userID, storyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userStory)
}

func (h *StoryHandler) CurrentChapter(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	chapter, err := h.service.CurrentChapter(c.Request.Context(), userID, storyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

func (h *StoryHandler) Respond(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	storyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.StoryResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userStory, err := h.service.Respond(c.Request.Context(), userID, storyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, userStory)
}
