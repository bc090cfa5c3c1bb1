package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fbawholesale/ops-service/internal/events"
	"github.com/fbawholesale/ops-service/internal/models"
)

// newShipmentReference derives a reference from the current millisecond
// timestamp in uppercase base36. Uniqueness is enforced at the storage
// layer; a collision is retried once with a fresh timestamp.
func newShipmentReference() string {
	return "SHIP-" + strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}

// CreateShipment derives an inbound shipment from an approved purchase
// order. The order row is locked for the duration of the transaction so the
// approved check cannot race with a concurrent status change.
func (h *Handler) CreateShipment(c *gin.Context) {
	userID, _ := GetUserID(c)
	orgID := GetOrgID(c)

	poID := c.Param("po_id")
	if _, err := uuid.Parse(poID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid purchase order ID",
			Message: "Purchase order ID must be a valid UUID",
		})
		return
	}

	var req models.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}
	if req.Cartons < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid cartons",
			Message: "A shipment needs at least one carton",
		})
		return
	}
	if req.WeightPerCarton < 0 || req.Length < 0 || req.Width < 0 || req.Height < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid dimensions",
			Message: "Weight and dimensions must not be negative",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	shipment, err := h.createShipment(ctx, orgID, userID, poID, &req)
	if err != nil {
		code, body := shipmentCreateFailure(poID, err)
		c.JSON(code, body)
		return
	}

	h.events.Publish(events.EventShipmentCreated, poID, events.ShipmentCreatedPayload{
		ShipmentID:        shipment.ID,
		PurchaseOrderID:   poID,
		OrganizationID:    orgID,
		ShipmentReference: shipment.ShipmentReference,
		Cartons:           shipment.Cartons,
		CreatedBy:         userID,
	})

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Shipment created",
		Data:    shipment,
	})
}

// shipmentCreateFailure maps a failed shipment creation to a response.
// Shipments only derive from approved orders; any other state is a 409, as
// is exhausting the reference retry.
func shipmentCreateFailure(poID string, err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, errPONotFound):
		return http.StatusNotFound, models.ErrorResponse{
			Error:   "Purchase order not found",
			Message: fmt.Sprintf("No purchase order found with ID %s", poID),
		}
	case errors.Is(err, errPONotApproved):
		return http.StatusConflict, models.ErrorResponse{
			Error:   "Invalid transition",
			Message: "Shipments can only be created for approved purchase orders",
		}
	case errors.Is(err, errDuplicateReference):
		return http.StatusConflict, models.ErrorResponse{
			Error:   "Duplicate reference",
			Message: "Could not allocate a unique shipment reference, please retry",
		}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create shipment",
			Message: err.Error(),
		}
	}
}

// ListShipments lists the organization's shipments, optionally filtered to
// one purchase order via ?purchase_order_id=.
func (h *Handler) ListShipments(c *gin.Context) {
	orgID := GetOrgID(c)

	poID := c.Query("purchase_order_id")
	if poID != "" {
		if _, err := uuid.Parse(poID); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid purchase order ID",
				Message: "purchase_order_id must be a valid UUID",
			})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	shipments, err := h.listShipments(ctx, orgID, poID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list shipments",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shipments": shipments,
		"count":     len(shipments),
	})
}

// UpdateShipmentStatus sets a shipment to any valid status. Progression is
// deliberately unordered; a delivered shipment may be reverted by an
// operator correcting a mistake.
func (h *Handler) UpdateShipmentStatus(c *gin.Context) {
	userID, _ := GetUserID(c)
	orgID := GetOrgID(c)

	shipmentID := c.Param("shipment_id")
	if _, err := uuid.Parse(shipmentID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid shipment ID",
			Message: "Shipment ID must be a valid UUID",
		})
		return
	}

	var req models.UpdateShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}
	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid status",
			Message: fmt.Sprintf("Unknown shipment status %q", req.Status),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	shipment, err := h.updateShipmentStatus(ctx, orgID, shipmentID, userID, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update shipment",
			Message: err.Error(),
		})
		return
	}
	if shipment == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Shipment not found",
			Message: fmt.Sprintf("No shipment found with ID %s", shipmentID),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Shipment updated",
		Data:    shipment,
	})
}
