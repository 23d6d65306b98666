package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"ms-marketplace/internal/models"

	"github.com/signintech/gopdf"
)

// ErrNotPaid is returned when a receipt is requested for a payment attempt
// that did not succeed.
var ErrNotPaid = errors.New("receipt available only for successful transactions")

// PDFGenerator renders a payment receipt with the encrypted QR embedded.
type PDFGenerator struct {
	fontPath string
}

func NewPDFGenerator(fontPath string) *PDFGenerator {
	return &PDFGenerator{fontPath: fontPath}
}

func (g *PDFGenerator) Generate(tx models.Transaction, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	err := pdf.AddTTFFont("dejavu", g.fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	err = pdf.SetFont("dejavu", "", 14)
	if err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf)

	pdf.SetY(60)
	addTransactionInfo(pdf, tx)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(260)
	addFooter(pdf)

	var buf bytes.Buffer
	err = pdf.Write(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "PAYMENT RECEIPT")
}

func addTransactionInfo(pdf *gopdf.GoPdf, tx models.Transaction) {
	info := []struct {
		Label string
		Value string
	}{
		{"Transaction ID", tx.ID},
		{"Cart ID", tx.CartID},
		{"User ID", fmt.Sprintf("%d", tx.UserID)},
		{"Payment Method", string(tx.PaymentMethod)},
		{"Amount", tx.Amount.StringFixed(2)},
		{"Status", string(tx.Status)},
		{"Reference", tx.ExternalReference},
		{"Created At", tx.CreatedAt.Format("2006-01-02 15:04")},
	}

	for _, item := range info {
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 100, H: 100}
	err = pdf.ImageFrom(img, 100, pdf.GetY(), rect)
	if err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.Cell(nil, "Keep this receipt as proof of payment.")
}

// Generator ties QR encoding and PDF rendering together for the receipt
// endpoint.
type Generator struct {
	QR  *QRGenerator
	PDF *PDFGenerator
}

func NewGenerator(qrSecret, fontPath string) *Generator {
	return &Generator{
		QR:  NewQRGenerator(qrSecret),
		PDF: NewPDFGenerator(fontPath),
	}
}

// Render produces a receipt PDF for a successful transaction.
func (g *Generator) Render(tx models.Transaction) ([]byte, error) {
	if tx.Status != models.TransactionSuccess {
		return nil, ErrNotPaid
	}

	qrBytes, err := g.QR.GenerateEncryptedQR(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt QR: %w", err)
	}

	return g.PDF.Generate(tx, qrBytes)
}
