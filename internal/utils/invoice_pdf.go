package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"vendora_back_end/internal/config"
	"vendora_back_end/internal/models"
)

// GenerateSepaQR génère un QR SEPA (format EPC) en base64 prêt pour <img src="...">
func GenerateSepaQR(iban, bic, name, ref string, amount float64) (string, error) {
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderInvoicePDF charge la page facture du front et l'imprime en PDF
// via Chrome headless
func RenderInvoicePDF(frontendURL, orderID, qrBase64 string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", orderID)
	q.Set("qr", qrBase64)

	fullURL := fmt.Sprintf("%s/invoice?%s", frontendURL, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}

// GenerateInvoicePDF prépare le QR SEPA puis rend la facture de la commande
func GenerateInvoicePDF(cfg *config.Config, order models.Order) ([]byte, error) {
	ref := fmt.Sprintf("FACT-%s", order.ID.Hex())

	qrBase64, err := GenerateSepaQR(cfg.CompanyIBAN, cfg.CompanyBIC, cfg.CompanyName, ref, order.FinalPrice)
	if err != nil {
		return nil, fmt.Errorf("erreur génération QR: %v", err)
	}

	return RenderInvoicePDF(cfg.FrontendURL, order.ID.Hex(), qrBase64)
}
