package types

import (
	"github.com/shopspring/decimal"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// NodeInfo is a snapshot of the user's node.
type NodeInfo struct {
	Version           string          `json:"version"`
	Measurement       string          `json:"measurement"`
	UserPk            UserPk          `json:"user_pk"`
	NodePk            string          `json:"node_pk"`
	Balance           decimal.Decimal `json:"balance"`
	LightningBalance  decimal.Decimal `json:"lightning_balance"`
	OnchainBalance    decimal.Decimal `json:"onchain_balance"`
	NumChannels       int             `json:"num_channels"`
	NumUsableChannels int             `json:"num_usable_channels"`
}

// CreateInvoiceRequest asks the node for a new BOLT11 invoice.
type CreateInvoiceRequest struct {
	ExpirationSecs uint32           `json:"expiration_secs"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// Validate checks the request before it is sent.
func (r CreateInvoiceRequest) Validate() error {
	if r.ExpirationSecs == 0 {
		return lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"field": "expiration_secs",
			"want":  "> 0",
		})
	}
	if r.Amount != nil {
		return ValidateAmount(*r.Amount)
	}
	return nil
}

// CreateInvoiceResponse carries the encoded invoice and its payment index.
type CreateInvoiceResponse struct {
	Invoice string              `json:"invoice"`
	Index   PaymentCreatedIndex `json:"index"`
}

// PayInvoiceRequest pays a BOLT11 invoice. Amount is required only for
// amountless invoices.
type PayInvoiceRequest struct {
	Invoice string           `json:"invoice"`
	Amount  *decimal.Decimal `json:"fallback_amount,omitempty"`
	Note    *string          `json:"note,omitempty"`
}

// Validate checks the request before it is sent.
func (r PayInvoiceRequest) Validate() error {
	if r.Invoice == "" {
		return lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"field": "invoice",
			"want":  "non-empty",
		})
	}
	if r.Note != nil && len(*r.Note) > MaxNoteLen {
		return lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"field": "note",
			"max":   "512 bytes",
		})
	}
	if r.Amount != nil {
		return ValidateAmount(*r.Amount)
	}
	return nil
}

// PayInvoiceResponse carries the index of the new outbound payment.
type PayInvoiceResponse struct {
	Index PaymentCreatedIndex `json:"index"`
}

// GetPaymentRequest looks a payment up on the node.
type GetPaymentRequest struct {
	Index PaymentCreatedIndex `json:"index"`
}

// GetPaymentResponse holds the payment, or nil if the node has none.
type GetPaymentResponse struct {
	Payment *SdkPayment `json:"payment"`
}

// SignupRequest registers a new user with the backend.
type SignupRequest struct {
	UserPk     UserPk  `json:"user_pk"`
	Partner    *UserPk `json:"partner,omitempty"`
	SignupCode *string `json:"signup_code,omitempty"`
}

// ProvisionStatus describes what the backend expects the node to run and
// what it has been provisioned with so far.
type ProvisionStatus struct {
	SignedUp bool `json:"signed_up"`
	// LatestVersion is the enclave release the node should run.
	LatestVersion string `json:"latest_version"`
	// LatestMeasurement identifies the LatestVersion enclave build.
	LatestMeasurement string `json:"latest_measurement"`
	// ProvisionedVersion is the newest release already provisioned, empty if none.
	ProvisionedVersion string `json:"provisioned_version,omitempty"`
}

// ProvisionRequest hands the root seed to an enclave release.
type ProvisionRequest struct {
	UserPk          UserPk  `json:"user_pk"`
	Version         string  `json:"version"`
	Measurement     string  `json:"measurement"`
	RootSeed        []byte  `json:"root_seed"`
	DeployEnv       string  `json:"deploy_env"`
	Network         string  `json:"network"`
	AllowGvfsAccess bool    `json:"allow_gvfs_access"`
	EncryptedSeed   []byte  `json:"encrypted_seed,omitempty"`
	GoogleAuthCode  *string `json:"google_auth_code,omitempty"`
}
