package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketwatch/backend/internal/domain"
)

// Aggregator runs one keyword aggregation pass.
type Aggregator interface {
	Aggregate(ctx context.Context, keyword string) (*domain.AggregationResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	aggregator Aggregator
	catalog    domain.Catalog
	watches    domain.WatchRepository
}

// NewHandler creates a new HTTP handler
func NewHandler(aggregator Aggregator, catalog domain.Catalog, watches domain.WatchRepository) *Handler {
	return &Handler{
		aggregator: aggregator,
		catalog:    catalog,
		watches:    watches,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "marketwatch-backend",
		"version": "1.0.0",
	})
}

// Search aggregates marketplace offers for a keyword
func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	result, err := h.aggregator.Aggregate(c.Request.Context(), keyword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrCatalogUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog store unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns a catalog product with its offers
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	offers, err := h.catalog.ListOffers(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"offers":  offers,
	})
}

// GetPriceHistory returns the recorded prices for an offer
func (h *Handler) GetPriceHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer id"})
		return
	}

	history, err := h.catalog.ListPriceHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// createWatchRequest is the POST /watches payload
type createWatchRequest struct {
	UserID      int64   `json:"userId" binding:"required"`
	ProductID   string  `json:"productId" binding:"required"`
	TargetPrice float64 `json:"targetPrice" binding:"required,gt=0"`
}

// CreateWatch registers a price watch for a product
func (h *Handler) CreateWatch(c *gin.Context) {
	var req createWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if _, err := h.catalog.GetProduct(c.Request.Context(), productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	watch := &domain.Watch{
		UserID:      req.UserID,
		ProductID:   productID,
		TargetPrice: req.TargetPrice,
		IsActive:    true,
	}
	if err := h.watches.Create(c.Request.Context(), watch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create watch"})
		return
	}

	c.JSON(http.StatusCreated, watch)
}

// ListWatches returns a user's watches
func (h *Handler) ListWatches(c *gin.Context) {
	var query struct {
		UserID int64 `form:"user_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'user_id' is required"})
		return
	}

	watches, err := h.watches.ListByUser(c.Request.Context(), query.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list watches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"watches": watches})
}

// DeleteWatch removes a watch
func (h *Handler) DeleteWatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid watch id"})
		return
	}

	if err := h.watches.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrWatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete watch"})
		return
	}

	c.Status(http.StatusNoContent)
}
