package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

func strPtr(s string) *string { return &s }

func TestParseUserPk(t *testing.T) {
	t.Parallel()
	hexPk := strings.Repeat("ab", 32)

	pk, err := types.ParseUserPk(hexPk)
	require.NoError(t, err)
	assert.Equal(t, hexPk, pk.String())
	assert.False(t, pk.IsZero())

	_, err = types.ParseUserPk("abcd")
	require.ErrorIs(t, err, lexeerr.ErrInvalidInput)

	_, err = types.ParseUserPk(strings.Repeat("zz", 32))
	require.ErrorIs(t, err, lexeerr.ErrInvalidInput)
}

func TestUserPk_JSON(t *testing.T) {
	t.Parallel()
	pk, err := types.ParseUserPk(strings.Repeat("01", 32))
	require.NoError(t, err)

	data, err := json.Marshal(struct {
		Pk types.UserPk `json:"pk"`
	}{pk})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pk":"`+strings.Repeat("01", 32)+`"}`, string(data))

	var out struct {
		Pk types.UserPk `json:"pk"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, pk, out.Pk)
}

func TestPaymentUpdatedIndex_Compare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b types.PaymentUpdatedIndex
		want int
	}{
		{"equal", types.PaymentUpdatedIndex{Seq: 5}, types.PaymentUpdatedIndex{Seq: 5}, 0},
		{"seq smaller", types.PaymentUpdatedIndex{Seq: 4, Local: 9}, types.PaymentUpdatedIndex{Seq: 5}, -1},
		{"seq larger", types.PaymentUpdatedIndex{Seq: 6}, types.PaymentUpdatedIndex{Seq: 5, Local: 3}, 1},
		{"local breaks tie", types.PaymentUpdatedIndex{Seq: 5, Local: 1}, types.PaymentUpdatedIndex{Seq: 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, tt.want < 0, tt.a.Less(tt.b))
		})
	}

	assert.Equal(t, "7", types.PaymentUpdatedIndex{Seq: 7}.String())
	assert.Equal(t, "7.2", types.PaymentUpdatedIndex{Seq: 7, Local: 2}.String())
	assert.True(t, types.PaymentUpdatedIndex{Seq: 7}.IsRemote())
}

func TestParseAmount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1500", false},
		{"1500.250", false},
		{" 0 ", false},
		{"0.0001", true},
		{"-1", true},
		{"abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			_, err := types.ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, lexeerr.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
		})
	}

	assert.True(t, types.AmountFromSats(2100).Equal(decimal.NewFromInt(2100)))
}

func TestBasicPayment_Validate(t *testing.T) {
	t.Parallel()
	valid := func() *types.BasicPayment {
		return &types.BasicPayment{
			Index:        3,
			UpdatedIndex: types.PaymentUpdatedIndex{Seq: 3},
			Direction:    types.PaymentDirectionInbound,
			Status:       types.PaymentStatusPending,
		}
	}
	require.NoError(t, valid().Validate())

	p := valid()
	p.Status = "settled"
	require.Error(t, p.Validate())

	p = valid()
	p.Direction = "sideways"
	require.Error(t, p.Validate())

	p = valid()
	p.UpdatedIndex.Seq = 2
	require.Error(t, p.Validate())

	p = valid()
	p.Note = strPtr(strings.Repeat("x", types.MaxNoteLen+1))
	require.Error(t, p.Validate())
}

func TestBasicPayment_CloneIsDeep(t *testing.T) {
	t.Parallel()
	amt := decimal.NewFromInt(10)
	p := &types.BasicPayment{Index: 1, Note: strPtr("coffee"), Amount: &amt}
	c := p.Clone()
	*c.Note = "tea"
	assert.Equal(t, "coffee", *p.Note)

	var nilPayment *types.BasicPayment
	assert.Nil(t, nilPayment.Clone())
}

func TestRequestValidation(t *testing.T) {
	t.Parallel()
	require.Error(t, types.CreateInvoiceRequest{}.Validate())
	require.NoError(t, types.CreateInvoiceRequest{ExpirationSecs: 3600}.Validate())

	neg := decimal.NewFromInt(-5)
	require.ErrorIs(t, types.CreateInvoiceRequest{ExpirationSecs: 60, Amount: &neg}.Validate(), lexeerr.ErrInvalidAmount)

	require.Error(t, types.PayInvoiceRequest{}.Validate())
	require.NoError(t, types.PayInvoiceRequest{Invoice: "lnbc1..."}.Validate())

	require.NoError(t, types.UpdatePaymentNote{Index: 1, Note: strPtr("ok")}.Validate())
	require.Error(t, types.UpdatePaymentNote{Index: 1, Note: strPtr(strings.Repeat("n", 513))}.Validate())
}
