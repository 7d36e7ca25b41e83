package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/tasks"
)

// TasksController handles sweep triggering and task status endpoints.
type TasksController struct {
	queue   TaskQueue
	catalog CatalogAdmin
}

// NewTasksController creates a new TasksController. queue may be nil, in
// which case sweeps run within the request.
func NewTasksController(queue TaskQueue, catalog CatalogAdmin) *TasksController {
	return &TasksController{queue: queue, catalog: catalog}
}

// RunSweep handles POST /api/admin/sweep
func (tc *TasksController) RunSweep(c *gin.Context) {
	if tc.queue == nil {
		report, err := tc.catalog.SweepDanglingReferences(c.Request.Context())
		if err != nil {
			respondCatalogError(c, err, "sweep references")
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	id, err := tc.queue.Enqueue(tasks.SweepReferencesTask{Trigger: "api"})
	if err != nil {
		respondInternalError(c, err, "enqueue sweep")
		return
	}
	respondAccepted(c, "task enqueued", gin.H{
		"task_id": id,
		"type":    tasks.SweepQueueName,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "task queue is disabled", Code: CodeNotFound})
		return
	}

	taskID := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	name := tasks.StatusString(status)
	code := http.StatusOK
	if name == "not_found" {
		code = http.StatusNotFound
	}
	c.JSON(code, gin.H{
		"id":     taskID,
		"status": name,
	})
}
