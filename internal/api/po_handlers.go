package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fbawholesale/ops-service/internal/events"
	"github.com/fbawholesale/ops-service/internal/models"
	"github.com/fbawholesale/ops-service/internal/redisx"
)

// CreatePurchaseOrder creates a purchase order with its items in a single
// transaction. Lines without a SKU or with a non-positive quantity are
// dropped before anything is written; the total is computed server side.
func (h *Handler) CreatePurchaseOrder(c *gin.Context) {
	userID, _ := GetUserID(c)
	orgID := GetOrgID(c)

	var req models.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.POStatusDraft
	}
	if status != models.POStatusDraft && status != models.POStatusSubmitted {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid status",
			Message: "A purchase order can only be created as draft or submitted",
		})
		return
	}

	items, err := models.NormalizeItems(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid items",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	po, err := h.createPurchaseOrder(ctx, orgID, userID, req.SupplierID, status, items)
	if err != nil {
		if errors.Is(err, errSupplierNotFound) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid supplier",
				Message: "The supplier does not exist in this organization",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create purchase order",
			Message: err.Error(),
		})
		return
	}

	h.cachePOStatus(ctx, po.ID, po.Status)
	h.events.Publish(events.EventPOCreated, po.ID, events.POCreatedPayload{
		PurchaseOrderID: po.ID,
		OrganizationID:  orgID,
		SupplierID:      po.SupplierID,
		Status:          string(po.Status),
		TotalCost:       po.TotalCost,
		CreatedBy:       userID,
		ItemCount:       len(po.Items),
	})
	if po.Status == models.POStatusSubmitted {
		h.events.Publish(events.EventPOSubmitted, po.ID, events.PODecisionPayload{
			PurchaseOrderID: po.ID,
			OrganizationID:  orgID,
			Status:          string(po.Status),
			DecidedBy:       userID,
		})
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message: "Purchase order created",
		Data:    po,
	})
}

// ListPurchaseOrders lists the organization's purchase orders. Callers
// without the view-all permission only see orders they created.
func (h *Handler) ListPurchaseOrders(c *gin.Context) {
	userID, _ := GetUserID(c)
	orgID := GetOrgID(c)

	createdBy := ""
	if !models.CanPerform(GetRole(c), models.ActionViewAllPOs) {
		createdBy = userID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.listPurchaseOrders(ctx, orgID, createdBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list purchase orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"purchase_orders": orders,
		"count":           len(orders),
	})
}

// GetPurchaseOrder returns one purchase order with items. Visibility follows
// the same rule as the listing: creators see their own, admins see all.
func (h *Handler) GetPurchaseOrder(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	po, err := h.getPurchaseOrder(ctx, orgID, poID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load purchase order",
			Message: err.Error(),
		})
		return
	}
	if po == nil || (!models.CanPerform(GetRole(c), models.ActionViewAllPOs) && po.CreatedBy != userID) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Purchase order not found",
			Message: fmt.Sprintf("No purchase order found with ID %s", poID),
		})
		return
	}

	c.JSON(http.StatusOK, po)
}

// SubmitPurchaseOrder moves a draft to submitted. Only the creator or an
// admin may submit.
func (h *Handler) SubmitPurchaseOrder(c *gin.Context) {
	h.transitionPurchaseOrder(c, poTransition{
		from:        models.POStatusDraft,
		to:          models.POStatusSubmitted,
		creatorOnly: true,
		event:       events.EventPOSubmitted,
		message:     "Purchase order submitted",
	})
}

// ApprovePurchaseOrder approves a submitted purchase order, recording the
// decision maker, time and notes. The conditional update closes the race
// with a concurrent reject: exactly one decision wins.
func (h *Handler) ApprovePurchaseOrder(c *gin.Context) {
	h.transitionPurchaseOrder(c, poTransition{
		from:     models.POStatusSubmitted,
		to:       models.POStatusApproved,
		decision: true,
		event:    events.EventPOApproved,
		message:  "Purchase order approved",
	})
}

// RejectPurchaseOrder cancels a submitted purchase order with the decision
// recorded the same way an approval is.
func (h *Handler) RejectPurchaseOrder(c *gin.Context) {
	h.transitionPurchaseOrder(c, poTransition{
		from:     models.POStatusSubmitted,
		to:       models.POStatusCancelled,
		decision: true,
		event:    events.EventPORejected,
		message:  "Purchase order rejected",
	})
}

// ReceivePurchaseOrder marks an approved purchase order as received.
func (h *Handler) ReceivePurchaseOrder(c *gin.Context) {
	h.transitionPurchaseOrder(c, poTransition{
		from:    models.POStatusApproved,
		to:      models.POStatusReceived,
		event:   events.EventPOReceived,
		message: "Purchase order received",
	})
}

// poTransition describes one edge of the purchase order lifecycle.
type poTransition struct {
	from        models.POStatus
	to          models.POStatus
	creatorOnly bool // restrict to creator unless the caller is an admin
	decision    bool // record approved_by / approved_at / approval_notes
	event       string
	message     string
}

// transitionPurchaseOrder applies one lifecycle edge with a conditional
// update: the row only changes if it is still in the expected state, so
// concurrent decisions cannot both win. Zero rows affected is disambiguated
// into 404 (no such order) or 409 (wrong state).
func (h *Handler) transitionPurchaseOrder(c *gin.Context, t poTransition) {
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

	var notes string
	if t.decision {
		// Notes are optional: an empty body is fine, malformed JSON is not.
		var req models.DecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid request",
				Message: err.Error(),
			})
			return
		}
		notes = req.Notes
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	creatorFilter := ""
	if t.creatorOnly && !models.CanPerform(GetRole(c), models.ActionEditPO) {
		creatorFilter = userID
	}

	po, err := h.updatePurchaseOrderStatus(ctx, poUpdate{
		orgID:         orgID,
		poID:          poID,
		from:          t.from,
		to:            t.to,
		userID:        userID,
		creatorFilter: creatorFilter,
		decision:      t.decision,
		notes:         notes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update purchase order",
			Message: err.Error(),
		})
		return
	}
	if po == nil {
		current, lookupErr := h.getPurchaseOrderStatus(ctx, orgID, poID)
		if lookupErr != nil {
			current = ""
		}
		code, body := transitionFailure(poID, current, t.to)
		c.JSON(code, body)
		return
	}

	h.cachePOStatus(ctx, po.ID, po.Status)
	h.events.Publish(t.event, po.ID, events.PODecisionPayload{
		PurchaseOrderID: po.ID,
		OrganizationID:  orgID,
		Status:          string(po.Status),
		DecidedBy:       userID,
		Notes:           notes,
	})

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: t.message,
		Data:    po,
	})
}

// transitionFailure maps a zero-row conditional update to a response. The
// guarded UPDATE cannot tell "no such order" from "wrong state" by rows
// affected alone, so the caller re-reads the current status: absent means
// 404, present in any other state means the transition lost (to a
// concurrent decision or an out-of-order call) and gets 409.
func transitionFailure(poID string, current, to models.POStatus) (int, models.ErrorResponse) {
	if current == "" {
		return http.StatusNotFound, models.ErrorResponse{
			Error:   "Purchase order not found",
			Message: fmt.Sprintf("No purchase order found with ID %s", poID),
		}
	}
	return http.StatusConflict, models.ErrorResponse{
		Error:   "Invalid transition",
		Message: fmt.Sprintf("Cannot move purchase order from %s to %s", current, to),
	}
}

// DeletePurchaseOrder removes a purchase order and, via cascade, its items
// and shipments.
func (h *Handler) DeletePurchaseOrder(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	deleted, err := h.deletePurchaseOrder(ctx, orgID, poID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to delete purchase order",
			Message: err.Error(),
		})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "Purchase order not found",
			Message: fmt.Sprintf("No purchase order found with ID %s", poID),
		})
		return
	}

	h.dropPOStatus(ctx, poID)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Purchase order deleted",
	})
}

func (h *Handler) cachePOStatus(ctx context.Context, poID string, status models.POStatus) {
	if h.rdb == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyPOStatus, poID)
	_ = h.rdb.Set(ctx, key, string(status), redisx.TTLStatusCache).Err()
}

func (h *Handler) dropPOStatus(ctx context.Context, poID string) {
	if h.rdb == nil {
		return
	}
	_ = h.rdb.Del(ctx, fmt.Sprintf(redisx.KeyPOStatus, poID)).Err()
}
