package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pharmabill/pharmabill-api/internal/application/billing"
	"github.com/pharmabill/pharmabill-api/internal/application/dto"
)

// DocumentHandler serves the document lifecycle: create, read, edit, delete
// and returns. The :type segment selects which side of the ledger the
// document lives on.
type DocumentHandler struct {
	coordinator *billing.Coordinator
	validate    *validator.Validate
}

// NewDocumentHandler builds the handler.
func NewDocumentHandler(coordinator *billing.Coordinator, validate *validator.Validate) *DocumentHandler {
	return &DocumentHandler{coordinator: coordinator, validate: validate}
}

// docTypeFromPath maps the route segment to the internal document type.
// Only invoices and purchases are addressable; returns are created through
// the /returns sub-resource of their original.
func docTypeFromPath(segment string) string {
	switch segment {
	case "invoices":
		return "INVOICE"
	case "purchases":
		return "PURCHASE"
	}
	return ""
}

// Create creates an invoice or purchase atomically: numbering, stock movement
// and ledger posting happen in one transaction.
// POST /api/documents/:type
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return unauthorized(c)
	}
	docType := docTypeFromPath(c.Params("type"))
	if docType == "" {
		return badRequest(c, "VALIDATION", "unknown document type")
	}
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	doc, err := h.coordinator.CreateDocument(c.Context(), shopID, userID, docType, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetByID returns a document with its items.
// GET /api/documents/:type/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	if docTypeFromPath(c.Params("type")) == "" {
		return badRequest(c, "VALIDATION", "unknown document type")
	}
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "VALIDATION", "id required")
	}
	doc, err := h.coordinator.GetDocument(c.Context(), shopID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(doc)
}

// Edit replaces a document's payload. Stock and ledger are adjusted by the
// diff against the stored items, not rebuilt from scratch.
// PUT /api/documents/:type/:id
func (h *DocumentHandler) Edit(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return unauthorized(c)
	}
	docType := docTypeFromPath(c.Params("type"))
	if docType == "" {
		return badRequest(c, "VALIDATION", "unknown document type")
	}
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "VALIDATION", "id required")
	}
	var in dto.EditDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	doc, err := h.coordinator.EditDocument(c.Context(), shopID, userID, docType, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(doc)
}

// Delete removes a document, reversing its stock movements and ledger
// entries. Reversals that drive a batch negative come back as warnings.
// DELETE /api/documents/:type/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	docType := docTypeFromPath(c.Params("type"))
	if docType == "" {
		return badRequest(c, "VALIDATION", "unknown document type")
	}
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "VALIDATION", "id required")
	}
	warnings, err := h.coordinator.DeleteDocument(c.Context(), shopID, docType, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true, "warnings": warnings})
}

// CreateReturn records a credit or debit note against an existing document.
// POST /api/documents/:type/:id/returns
func (h *DocumentHandler) CreateReturn(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return unauthorized(c)
	}
	if docTypeFromPath(c.Params("type")) == "" {
		return badRequest(c, "VALIDATION", "unknown document type")
	}
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "VALIDATION", "id required")
	}
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	ret, err := h.coordinator.CreateReturn(c.Context(), shopID, userID, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ret)
}
