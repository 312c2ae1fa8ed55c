package httpapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"bizflow/pkg/invoice"
	"bizflow/pkg/proposal"
)

// invoiceView adds the display helpers the list page needs.
type invoiceView struct {
	invoice.Invoice
	FormattedAmount string `json:"formatted_amount"`
	StatusLabel     string `json:"status_label"`
}

func viewOf(inv invoice.Invoice) invoiceView {
	if inv.Items == nil {
		inv.Items = []invoice.LineItem{}
	}
	return invoiceView{
		Invoice:         inv,
		FormattedAmount: invoice.FormatMoney(inv.Amount),
		StatusLabel:     inv.Status.Label(),
	}
}

// createInvoicePayload is the builder form plus which button was pressed.
type createInvoicePayload struct {
	invoice.Draft
	Send bool `json:"send"`
}

func (s *Server) listInvoices(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	invoices, err := s.svc.Invoices.List(ctx, invoice.Filter{
		Query:  c.Query("q"),
		Status: c.Query("status", "all"),
	})
	if err != nil {
		return err
	}
	views := make([]invoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, viewOf(inv))
	}
	return c.JSON(views)
}

func (s *Server) getInvoice(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := s.svc.Invoices.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(viewOf(inv))
}

func (s *Server) createInvoice(c *fiber.Ctx) error {
	var payload createInvoicePayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid JSON")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := s.svc.Invoices.Create(ctx, payload.Draft, payload.Send)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(viewOf(inv))
}

func (s *Server) previewInvoice(c *fiber.Ctx) error {
	var draft invoice.Draft
	if err := c.BodyParser(&draft); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid JSON")
	}
	totals := invoice.Preview(draft, s.svc.Invoices.TaxRate())
	return c.JSON(fiber.Map{
		"subtotal":  totals.Subtotal,
		"tax":       totals.Tax,
		"tax_rate":  totals.TaxRate,
		"total":     totals.Total,
		"items":     totals.Items,
		"formatted": fiber.Map{"subtotal": invoice.FormatMoney(totals.Subtotal), "tax": invoice.FormatMoney(totals.Tax), "total": invoice.FormatMoney(totals.Total)},
	})
}

func (s *Server) sendInvoice(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	inv, err := s.svc.Invoices.Send(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(viewOf(inv))
}

func (s *Server) listProposals(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	proposals, err := s.svc.Proposals.List(ctx, c.Query("q"))
	if err != nil {
		return err
	}
	type proposalView struct {
		proposal.Proposal
		FormattedValue string `json:"formatted_value"`
		StatusLabel    string `json:"status_label"`
	}
	views := make([]proposalView, 0, len(proposals))
	for _, p := range proposals {
		views = append(views, proposalView{Proposal: p, FormattedValue: invoice.FormatMoney(p.Value), StatusLabel: p.Status.Label()})
	}
	return c.JSON(views)
}
