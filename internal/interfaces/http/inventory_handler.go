package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/application/inventory"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

// InventoryHandler serves the batch read side and allocation previews.
type InventoryHandler struct {
	uc       *inventory.UseCase
	validate *validator.Validate
}

// NewInventoryHandler builds the handler.
func NewInventoryHandler(uc *inventory.UseCase, validate *validator.Validate) *InventoryHandler {
	return &InventoryHandler{uc: uc, validate: validate}
}

// Batches lists a product's sellable batches in FIFO order.
// GET /api/products/:id/batches
func (h *InventoryHandler) Batches(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	productID := c.Params("id")
	if productID == "" {
		return badRequest(c, "VALIDATION", "product id required")
	}
	batches, err := h.uc.AvailableBatches(c.Context(), shopID, productID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return c.JSON(out)
}

// AllocationPreview shows which batches a sale of the given quantity would
// consume, without touching stock.
// POST /api/products/:id/allocation-preview
func (h *InventoryHandler) AllocationPreview(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	productID := c.Params("id")
	if productID == "" {
		return badRequest(c, "VALIDATION", "product id required")
	}
	var in dto.AllocationPreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	allocations, err := h.uc.AllocateForSale(c.Context(), shopID, productID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AllocationResponse, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, dto.AllocationResponse{
			BatchID:      a.Batch.ID,
			BatchCode:    a.Batch.BatchCode,
			Quantity:     a.Quantity,
			SellingPrice: a.SellingPrice,
			MRP:          a.MRP,
			GSTRate:      a.GSTRate,
		})
	}
	return c.JSON(out)
}

// DeleteBatch hard-deletes a batch that no document references.
// DELETE /api/batches/:id
func (h *InventoryHandler) DeleteBatch(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	batchID := c.Params("id")
	if batchID == "" {
		return badRequest(c, "VALIDATION", "batch id required")
	}
	if err := h.uc.DeleteBatch(c.Context(), shopID, batchID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	expiry := ""
	if !b.ExpiryDate.IsZero() {
		expiry = b.ExpiryDate.Format("2006-01-02")
	}
	return dto.BatchResponse{
		ID:            b.ID,
		ProductID:     b.ProductID,
		BatchCode:     b.BatchCode,
		ExpiryDate:    expiry,
		MRP:           b.MRP,
		PurchasePrice: b.PurchasePrice,
		SellingPrice:  b.SellingPrice,
		GSTRate:       b.GSTRate,
		Quantity:      b.Quantity,
		Active:        b.Active,
	}
}
