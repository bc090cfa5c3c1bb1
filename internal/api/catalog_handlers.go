package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fbawholesale/ops-service/internal/models"
)

// ListProducts lists the organization's products newest first.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.listProducts(ctx, GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list products",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.createProduct(ctx, GetOrgID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create product",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Message: "Product created", Data: product})
}

// ListSKUs lists the organization's SKUs with their product attached.
func (h *Handler) ListSKUs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	skus, err := h.listSKUs(ctx, GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list SKUs",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skus": skus, "count": len(skus)})
}

func (h *Handler) CreateSKU(c *gin.Context) {
	var req models.CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sku, err := h.createSKU(ctx, GetOrgID(c), &req)
	if err != nil {
		if errors.Is(err, errProductNotFound) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid product",
				Message: "The product does not exist in this organization",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create SKU",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Message: "SKU created", Data: sku})
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	suppliers, err := h.listSuppliers(ctx, GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list suppliers",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers, "count": len(suppliers)})
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	supplier, err := h.createSupplier(ctx, GetOrgID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create supplier",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Message: "Supplier created", Data: supplier})
}

func (h *Handler) ListWarehouses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	warehouses, err := h.listWarehouses(ctx, GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list warehouses",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses, "count": len(warehouses)})
}

func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req models.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	warehouse, err := h.createWarehouse(ctx, GetOrgID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create warehouse",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Message: "Warehouse created", Data: warehouse})
}

// ListInventory lists stock levels with SKU and warehouse attached.
func (h *Handler) ListInventory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	inventory, err := h.listInventory(ctx, GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list inventory",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": inventory, "count": len(inventory)})
}

// UpsertInventory sets the stock level for a SKU at a warehouse. The pair
// is unique so repeated calls overwrite.
func (h *Handler) UpsertInventory(c *gin.Context) {
	var req models.UpsertInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid quantity",
			Message: "Quantity must not be negative",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	inv, err := h.upsertInventory(ctx, GetOrgID(c), &req)
	if err != nil {
		if errors.Is(err, errSKUNotFound) || errors.Is(err, errWarehouseNotFound) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid reference",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to upsert inventory",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Inventory updated", Data: inv})
}
