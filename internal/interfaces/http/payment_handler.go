package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/pharmabill/pharmabill-api/internal/application/billing"
	"github.com/pharmabill/pharmabill-api/internal/application/dto"
)

// PaymentHandler records party settlements and categorized expenses.
type PaymentHandler struct {
	coordinator *billing.Coordinator
	validate    *validator.Validate
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(coordinator *billing.Coordinator, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{coordinator: coordinator, validate: validate}
}

// RecordPayment settles part of a customer receivable or supplier payable.
// POST /api/payments
func (h *PaymentHandler) RecordPayment(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	id, err := h.coordinator.RecordPayment(c.Context(), shopID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// RecordExpense posts an expense against one of the fixed categories.
// POST /api/expenses
func (h *PaymentHandler) RecordExpense(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "invalid request body")
	}
	if err := h.validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	id, err := h.coordinator.RecordExpense(c.Context(), shopID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}
