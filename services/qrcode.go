package services

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// qrCodeSize is the edge length of the generated PNG in pixels
const qrCodeSize = 256

// OrderDetailURL is the public link to an order's detail page
func OrderDetailURL(baseURL string, orderID uint) string {
	return fmt.Sprintf("%s/order/%d/", strings.TrimRight(baseURL, "/"), orderID)
}

// OrderQRCode renders a PNG QR code linking to the order's detail page,
// printed on the table card
func OrderQRCode(baseURL string, orderID uint) ([]byte, error) {
	png, err := qrcode.Encode(OrderDetailURL(baseURL, orderID), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code for order %d: %w", orderID, err)
	}
	return png, nil
}
