package handler

import (
	"net/http"
	"strconv"

	"github.com/Junheng-Zheng/Junbot/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	service *service.ChatService
}

func NewTaskHandler(service *service.ChatService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks, "total": len(tasks)})
}

type createTaskRequest struct {
	Title    string `json:"title"`
	DueLabel string `json:"dueLabel"`
}

// Create 手动新增任务
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.service.AddTask(c.Request.Context(), req.Title, req.DueLabel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Complete 完成任务，即从列表中移除，重复调用不报错
func (h *TaskHandler) Complete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tasks, err := h.service.CompleteTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks, "total": len(tasks)})
}
