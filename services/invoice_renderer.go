package services

import (
	"bytes"
	"fmt"

	"github.com/autoservice-manager/workshop-api/models"
	"github.com/go-pdf/fpdf"
)

// InvoiceDocument is everything printed on an invoice
type InvoiceDocument struct {
	Invoice models.Invoice
	Order   models.Order
	Parts   []models.OrderPart
}

// InvoiceRenderer produces invoice PDFs
type InvoiceRenderer struct {
	shopName string
}

// NewInvoiceRenderer creates a renderer that prints shopName in the header
func NewInvoiceRenderer(shopName string) *InvoiceRenderer {
	return &InvoiceRenderer{shopName: shopName}
}

var partColumns = []struct {
	title string
	width float64
	align string
}{
	{"Code", 30, "L"},
	{"Part", 75, "L"},
	{"Qty", 20, "R"},
	{"Unit price", 30, "R"},
	{"Total", 35, "R"},
}

// Render lays out the invoice on one A4 page
func (r *InvoiceRenderer) Render(doc InvoiceDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.Invoice.InvoiceNumber, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(r.shopName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Invoice "+doc.Invoice.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued "+doc.Invoice.IssueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if c := doc.Order.Customer; c != nil {
		pdf.CellFormat(0, 6, tr("Customer: "+c.Name), "", 1, "L", false, 0, "")
	}
	if v := doc.Order.Vehicle; v != nil {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Vehicle: %s %s (%s)", v.Brand, v.Model, v.RegistrationNumber)), "", 1, "L", false, 0, "")
	}
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Order #%d: %s", doc.Order.ID, doc.Order.Description)), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range partColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, op := range doc.Parts {
		code, name := "", ""
		if op.Part != nil {
			code, name = op.Part.Code, op.Part.Name
		}
		cells := []string{
			code,
			name,
			fmt.Sprintf("%d", op.Quantity),
			op.UnitPrice.StringFixed(2),
			op.LineTotal().StringFixed(2),
		}
		for i, col := range partColumns {
			pdf.CellFormat(col.width, 7, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.CellFormat(155, 7, "Parts", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, doc.Invoice.PartsCost.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(155, 8, "Total due", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, doc.Invoice.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if doc.Invoice.Notes != nil && *doc.Invoice.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr(*doc.Invoice.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", doc.Invoice.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
