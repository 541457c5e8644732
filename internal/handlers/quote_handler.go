package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradematch_backend/internal/middleware"
	"tradematch_backend/internal/services"
	"tradematch_backend/internal/services/dto"
)

type QuoteHandler struct {
	*BaseHandler
	quoteService services.QuoteService
}

func NewQuoteHandler(base *BaseHandler, quoteService services.QuoteService) *QuoteHandler {
	return &QuoteHandler{BaseHandler: base, quoteService: quoteService}
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (h *QuoteHandler) ListForJob(c *gin.Context) {
	quotes, err := h.quoteService.GetQuotesForJob(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": quotes})
}

func (h *QuoteHandler) Accept(c *gin.Context) {
	job, quote, err := h.quoteService.AcceptQuote(c.Request.Context(), c.Param("id"), c.Param("quoteId"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job, "quote": quote})
}
