package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradematch_backend/internal/middleware"
	"tradematch_backend/internal/services"
	"tradematch_backend/internal/services/dto"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{BaseHandler: base, jobService: jobService}
}

func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}
	req.CustomerID = middleware.GetUserID(c)

	job, err := h.jobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	var req dto.UpdateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Complete(c *gin.Context) {
	job, err := h.jobService.MarkJobComplete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Cancel(c *gin.Context) {
	job, err := h.jobService.CancelJob(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.RecordPayment(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Open(c *gin.Context) {
	jobs, err := h.jobService.GetOpenJobs()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

func (h *JobHandler) Recent(c *gin.Context) {
	days := h.IntQuery(c, "days", 7)
	jobs, err := h.jobService.GetRecentOpenJobs(days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs, "days": days})
}

func (h *JobHandler) Mine(c *gin.Context) {
	jobs, err := h.jobService.GetJobsByCustomer(middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

func (h *JobHandler) List(c *gin.Context) {
	page := h.IntQuery(c, "page", 1)
	pageSize := h.IntQuery(c, "page_size", 20)

	jobs, total, err := h.jobService.ListJobs(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs, "total": total, "page": page, "page_size": pageSize})
}

// AdminDelete soft-deletes a job with its quotes and conversations. Behind
// the admin role guard.
func (h *JobHandler) AdminDelete(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	err := h.jobService.AdminDeleteJob(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
