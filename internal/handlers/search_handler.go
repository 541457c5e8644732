package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradematch_backend/internal/services"
	"tradematch_backend/internal/services/dto"
)

type SearchHandler struct {
	*BaseHandler
	searchService services.SearchService
}

func NewSearchHandler(base *BaseHandler, searchService services.SearchService) *SearchHandler {
	return &SearchHandler{BaseHandler: base, searchService: searchService}
}

func (h *SearchHandler) Jobs(c *gin.Context) {
	var req dto.SearchJobsRequest
	if !h.BindAndValidateQuery(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.searchService.SearchJobs(c.Request.Context(), &req))
}

func (h *SearchHandler) Tradespeople(c *gin.Context) {
	var req dto.SearchTradespeopleRequest
	if !h.BindAndValidateQuery(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.searchService.SearchTradespeople(c.Request.Context(), &req))
}
