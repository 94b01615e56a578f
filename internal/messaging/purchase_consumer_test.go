package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kayceejenz/mtop/internal/model"
)

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, accountID, txRef string, likeAmount int) (*model.PurchaseResult, error) {
	args := m.Called(ctx, accountID, txRef, likeAmount)
	res, _ := args.Get(0).(*model.PurchaseResult)
	return res, args.Error(1)
}

func TestHandle(t *testing.T) {
	body := []byte(`{"payerAccountId":"acct-1","amount":30,"txRef":"0xabc"}`)

	tests := []struct {
		name    string
		body    []byte
		result  *model.PurchaseResult
		err     error
		want    Action
		outcome string
	}{
		{"credited", body, &model.PurchaseResult{LikeBalance: decimal.NewFromInt(35)}, nil, Ack, "credited"},
		{"duplicate", body, &model.PurchaseResult{Duplicate: true}, nil, Ack, "duplicate"},
		{"claimed by other", body, nil, model.ErrPurchaseRefClaimed, Ack, "rejected"},
		{"unknown account", body, nil, model.ErrAccountNotFound, Ack, "rejected"},
		{"db down", body, nil, model.ErrUpstreamUnavailable, Requeue, "retry"},
		{"unexpected", body, nil, errors.New("boom"), Requeue, "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := &mockConfirmer{}
			confirmer.On("Confirm", mock.Anything, "acct-1", "0xabc", 30).Return(tt.result, tt.err).Once()

			var got string
			c := NewPurchaseConsumer("", "purchases.confirmed", confirmer)
			c.OnOutcome = func(o string) { got = o }

			assert.Equal(t, tt.want, c.Handle(context.Background(), tt.body))
			assert.Equal(t, tt.outcome, got)
			confirmer.AssertExpectations(t)
		})
	}
}

func TestHandleMalformed(t *testing.T) {
	confirmer := &mockConfirmer{}
	c := NewPurchaseConsumer("", "purchases.confirmed", confirmer)

	assert.Equal(t, Drop, c.Handle(context.Background(), []byte("{not json")))
	confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
