package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"golang.org/x/term"
	"rsc.io/qr"
)

// invoiceQRLevel is the error correction used for invoices. BOLT11 strings
// run to several hundred characters, so the lowest level keeps the code
// small enough for a terminal.
const invoiceQRLevel = qr.L

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd fits in int on supported platforms
}

// InvoiceURI turns a BOLT11 invoice into the uppercase lightning: URI
// wallets scan. Uppercase lets the QR use its denser alphanumeric mode.
func InvoiceURI(invoice string) string {
	return "LIGHTNING:" + strings.ToUpper(strings.TrimSpace(invoice))
}

// EncodeInvoiceQR checks that the invoice fits in a QR code and returns
// the code's size in modules.
func EncodeInvoiceQR(invoice string) (int, error) {
	code, err := qr.Encode(InvoiceURI(invoice), invoiceQRLevel)
	if err != nil {
		return 0, fmt.Errorf("encoding invoice QR: %w", err)
	}
	return code.Size, nil
}

// RenderInvoiceQR draws the invoice as a QR code when w is a terminal and
// the invoice fits. Nothing is written otherwise.
func RenderInvoiceQR(w io.Writer, invoice string) {
	if !IsTerminal(w) {
		return
	}
	if _, err := EncodeInvoiceQR(invoice); err != nil {
		return
	}
	qrterminal.GenerateWithConfig(InvoiceURI(invoice), qrterminal.Config{
		Level:          invoiceQRLevel,
		Writer:         w,
		QuietZone:      1,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
}
