package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhao/scanpay/internal/allocator"
	"github.com/azhao/scanpay/internal/auth"
	"github.com/azhao/scanpay/internal/middleware"
	"github.com/azhao/scanpay/internal/models"
	"github.com/azhao/scanpay/internal/service"
	"github.com/azhao/scanpay/internal/storage"
)

type handler struct {
	svc    *service.ReceiptService
	tokens *auth.TokenManager
}

// itemResponse is a receipt item plus who has claimed it right now.
type itemResponse struct {
	models.ReceiptItem
	AssignedTo []string `json:"assigned_to,omitempty"`
}

// receiptResponse decorates an immutable receipt with per-item assignment
// state from the session's allocator.
type receiptResponse struct {
	*models.Receipt
	Items []itemResponse `json:"items"`
}

func newReceiptResponse(r *models.Receipt, alloc *allocator.Allocator) receiptResponse {
	items := make([]itemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = itemResponse{ReceiptItem: item}
		if alloc != nil {
			items[i].AssignedTo = alloc.AssignedTo(item.ID)
		}
	}
	return receiptResponse{Receipt: r, Items: items}
}

// session resolves the allocator for the request's verified session id.
func (h *handler) session(c *gin.Context) (*allocator.Allocator, bool) {
	alloc, err := h.svc.Sessions().Get(middleware.SessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return alloc, true
}

func (h *handler) createSession(c *gin.Context) {
	id := h.svc.Sessions().Create()

	token, err := h.tokens.Generate(id)
	if err != nil {
		h.svc.Sessions().Delete(id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": id, "token": token})
}

func (h *handler) scanLines(c *gin.Context) {
	var req struct {
		Lines []string `json:"lines"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	receipt, err := h.svc.ScanLines(c.Request.Context(), middleware.SessionID(c), req.Lines)
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, newReceiptResponse(receipt, nil))
}

func (h *handler) scanImage(c *gin.Context) {
	image, err := io.ReadAll(c.Request.Body)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image body required"})
		return
	}

	receipt, err := h.svc.ScanImage(c.Request.Context(), middleware.SessionID(c), image, c.ContentType())
	switch {
	case errors.Is(err, service.ErrNoRecognizer):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		// Recognition errors pass through from the engine untouched.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, newReceiptResponse(receipt, nil))
}

func (h *handler) listReceipts(c *gin.Context) {
	receipts, err := h.svc.ListReceipts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (h *handler) getReceipt(c *gin.Context) {
	receipt, err := h.svc.GetReceipt(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *handler) splitState(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}

	resp := gin.H{"people": alloc.People()}
	if receipt := alloc.Receipt(); receipt != nil {
		resp["receipt"] = newReceiptResponse(receipt, alloc)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) splitSummary(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shares":      alloc.Summary(),
		"grand_total": alloc.GrandTotal(),
	})
}

func (h *handler) addPerson(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, alloc.AddPerson())
}

func (h *handler) renamePerson(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	if err := alloc.RenamePerson(c.Param("id"), req.Name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": alloc.People()})
}

func (h *handler) removePerson(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}

	err := alloc.RemovePerson(c.Param("id"))
	switch {
	case errors.Is(err, allocator.ErrLastPerson):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, allocator.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": alloc.People()})
}

func (h *handler) toggleAssignment(c *gin.Context) {
	alloc, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		ItemID   string `json:"item_id"`
		PersonID string `json:"person_id"`
	}
	if err := c.BindJSON(&req); err != nil || req.ItemID == "" || req.PersonID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id and person_id required"})
		return
	}

	assigned := alloc.ToggleAssignment(req.ItemID, req.PersonID)
	c.JSON(http.StatusOK, gin.H{
		"item_id":     req.ItemID,
		"person_id":   req.PersonID,
		"assigned":    assigned,
		"assigned_to": alloc.AssignedTo(req.ItemID),
	})
}
