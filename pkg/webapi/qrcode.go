package webapi

import (
	qrcode "github.com/skip2/go-qrcode"
)

// depositQRCodePNG renders a BIP-21 payment URI for a deposit address
// as a PNG. Medium error correction scans reliably from a phone screen
// at the sizes we serve.
func depositQRCodePNG(address string, size int) ([]byte, error) {
	return qrcode.Encode("bitcoin:"+address, qrcode.Medium, size)
}
