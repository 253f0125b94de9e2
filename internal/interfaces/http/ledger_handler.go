package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pharmabill/pharmabill-api/internal/application/dto"
	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
)

// LedgerHandler serves the accounting read side.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler builds the handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// AccountBalance returns the net balance of one account as of a date.
// Defaults to today when as_of is absent.
// GET /api/ledger/accounts/:account/balance?as_of=2026-04-01
func (h *LedgerHandler) AccountBalance(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	account := entity.Account(c.Params("account"))
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return badRequest(c, "VALIDATION", "as_of must be YYYY-MM-DD")
		}
		// inclusive of the whole day
		asOf = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	balance, err := h.uc.AccountBalance(c.Context(), shopID, account, asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AccountBalanceResponse{
		Account: string(account),
		AsOf:    asOf.Format("2006-01-02"),
		Balance: balance,
	})
}

// PartyLedger returns a counterparty's entries in chronological order with a
// running balance.
// GET /api/ledger/party/:type/:id?from=2026-04-01&to=2027-03-31
func (h *LedgerHandler) PartyLedger(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	if shopID == "" {
		return unauthorized(c)
	}
	partyType := partyTypeFromPath(c.Params("type"))
	if partyType == "" {
		return badRequest(c, "VALIDATION", "unknown party type")
	}
	partyID := c.Params("id")
	if partyID == "" {
		return badRequest(c, "VALIDATION", "party id required")
	}
	from := time.Time{}
	to := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return badRequest(c, "VALIDATION", "from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return badRequest(c, "VALIDATION", "to must be YYYY-MM-DD")
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	lines, err := h.uc.PartyLedger(c.Context(), shopID, partyType, partyID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PartyLedgerLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, dto.PartyLedgerLineResponse{
			Date:            line.Entry.Date.Format("2006-01-02"),
			Account:         string(line.Entry.Account),
			Type:            line.Entry.Type,
			Amount:          line.Entry.Amount,
			ReferenceType:   line.Entry.ReferenceType,
			ReferenceNumber: line.Entry.ReferenceNumber,
			Narration:       line.Entry.Narration,
			RunningBalance:  line.RunningBalance,
		})
	}
	return c.JSON(out)
}

func partyTypeFromPath(segment string) string {
	switch segment {
	case "customers":
		return entity.PartyTypeCustomer
	case "suppliers":
		return entity.PartyTypeSupplier
	}
	return ""
}
