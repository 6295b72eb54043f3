package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/tuition-engine/billing"
)

func TestClassify(t *testing.T) {
	today := date(2024, time.March, 10)
	r := ref(2024, time.March)

	tests := []struct {
		name   string
		due    int
		stored billing.PeriodStatus
		want   billing.PeriodStatus
	}{
		{"due yesterday is overdue", 9, billing.StatusPending, billing.StatusOverdue},
		{"due today is pending", 10, billing.StatusPending, billing.StatusPending},
		{"due tomorrow is pending", 11, billing.StatusPending, billing.StatusPending},
		{"paid stays paid when late", 1, billing.StatusPaid, billing.StatusPaid},
		{"canceled stays canceled when late", 1, billing.StatusCanceled, billing.StatusCanceled},
		{"stale overdue in the future is pending", 20, billing.StatusOverdue, billing.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := period("11987654321", r, date(2024, time.March, tt.due), 300, tt.stored)
			assert.Equal(t, tt.want, billing.Classify(p, today))
		})
	}
}

func TestClassifyAll_DoesNotMutateInput(t *testing.T) {
	periods := []billing.BillingPeriod{
		period("11987654321", ref(2024, time.January), date(2024, time.January, 10), 300, billing.StatusPending),
	}

	out := billing.ClassifyAll(periods, date(2024, time.March, 1))

	assert.Equal(t, billing.StatusOverdue, out[0].Status)
	assert.Equal(t, billing.StatusPending, periods[0].Status)
}

func TestSetStatus_KeepsPaymentDateConsistent(t *testing.T) {
	p := period("11987654321", ref(2024, time.January), date(2024, time.January, 10), 300, billing.StatusPending)

	p.SetStatus(billing.StatusPaid, date(2024, time.January, 8))
	assert.Equal(t, billing.StatusPaid, p.Status)
	if assert.NotNil(t, p.PaymentDate) {
		assert.Equal(t, "2024-01-08", p.PaymentDate.String())
	}

	p.SetStatus(billing.StatusPending, date(2024, time.January, 9))
	assert.Nil(t, p.PaymentDate)
}
