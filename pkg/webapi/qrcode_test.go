package webapi

import (
	"bytes"
	"testing"
)

func TestDepositQRCodePNG(t *testing.T) {
	png, err := depositQRCodePNG("1PMycacnJaSqwwJqjawXBErnLsZ7RkXUAs", 256)
	if err != nil {
		t.Fatalf("depositQRCodePNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("output is not a PNG")
	}
}
