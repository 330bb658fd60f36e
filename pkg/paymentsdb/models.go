package paymentsdb

import (
	"encoding/json"
	"fmt"

	"github.com/mrz1836/lexe/pkg/types"
)

// schemaVersion is bumped whenever the table layout changes incompatibly.
const schemaVersion = 1

const metaKeySchemaVersion = "schema_version"

// paymentRow is one persisted payment. The full record is kept as JSON; the
// remaining columns exist for indexing and integrity checks.
type paymentRow struct {
	CreatedIndex uint64 `gorm:"primaryKey;autoIncrement:false"`
	UpdatedSeq   uint64 `gorm:"not null;index:idx_payments_updated,priority:1"`
	UpdatedLocal uint32 `gorm:"not null;index:idx_payments_updated,priority:2"`
	Status       string `gorm:"not null;index"`
	Junk         bool   `gorm:"not null"`
	Note         *string
	Record       []byte `gorm:"not null"`
}

func (paymentRow) TableName() string { return "payments" }

type metaRow struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (metaRow) TableName() string { return "meta" }

func toRow(p *types.BasicPayment) (*paymentRow, error) {
	record, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &paymentRow{
		CreatedIndex: uint64(p.Index),
		UpdatedSeq:   p.UpdatedIndex.Seq,
		UpdatedLocal: p.UpdatedIndex.Local,
		Status:       string(p.Status),
		Junk:         p.Junk,
		Note:         p.Note,
		Record:       record,
	}, nil
}

// fromRow decodes a row and cross-checks it against its index columns.
func fromRow(row *paymentRow) (*types.BasicPayment, error) {
	var p types.BasicPayment
	if err := json.Unmarshal(row.Record, &p); err != nil {
		return nil, fmt.Errorf("payment %d: %w", row.CreatedIndex, err)
	}
	if uint64(p.Index) != row.CreatedIndex ||
		p.UpdatedIndex.Seq != row.UpdatedSeq ||
		p.UpdatedIndex.Local != row.UpdatedLocal ||
		string(p.Status) != row.Status {
		return nil, fmt.Errorf("payment %d: record does not match its index columns", row.CreatedIndex)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("payment %d: %w", row.CreatedIndex, err)
	}
	return &p, nil
}
