package sales

import (
	"fmt"
	"net/url"
	"strings"

	"gastro-backend/internal/models"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(sale models.Sale) ([]byte, error)
}

// ReceiptQR encodes a link to the public receipt page of a sale.
type ReceiptQR struct {
	BaseURL string
	Size    int
}

func (g ReceiptQR) Link(sale models.Sale) string {
	return fmt.Sprintf("%s/receipt?sale=%s", strings.TrimRight(g.BaseURL, "/"), url.QueryEscape(sale.SaleNumber))
}

func (g ReceiptQR) Generate(sale models.Sale) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.Link(sale), qrcode.Medium, size)
}
