package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareMonths(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		previous   string
		wantChange float64
		wantStatus ComparisonStatus
	}{
		{name: "increase", current: "150", previous: "100", wantChange: 50.0, wantStatus: Increased},
		{name: "decrease", current: "80", previous: "100", wantChange: -20.0, wantStatus: Decreased},
		{name: "equal", current: "100", previous: "100", wantChange: 0.0, wantStatus: NoChange},
		{name: "no previous spending", current: "30", previous: "0", wantChange: 100.0, wantStatus: Increased},
		{name: "nothing either month", current: "0", previous: "0", wantChange: 0.0, wantStatus: NoChange},
		{name: "dropped to zero", current: "0", previous: "40", wantChange: -100.0, wantStatus: Decreased},
		{name: "increase rounds away", current: "100000.01", previous: "100000.00", wantChange: 0.0, wantStatus: NoChange},
		{name: "decrease rounds away", current: "99999.99", previous: "100000.00", wantChange: 0.0, wantStatus: NoChange},
		{name: "smallest visible increase", current: "100010.00", previous: "100000.00", wantChange: 0.01, wantStatus: Increased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := CompareMonths(MustParseMoney(tt.current), MustParseMoney(tt.previous))
			assert.InDelta(t, tt.wantChange, cmp.PercentageChange, 1e-9)
			assert.Equal(t, tt.wantStatus, cmp.Status)
		})
	}
}

func TestComparisonStatusText(t *testing.T) {
	for _, s := range []ComparisonStatus{Increased, Decreased, NoChange} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var decoded ComparisonStatus
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, s, decoded)
	}

	var s ComparisonStatus
	assert.Error(t, s.UnmarshalText([]byte("SIDEWAYS")))
	assert.Equal(t, "NO_CHANGE", s.String())
}

func TestDailyTrendJSON(t *testing.T) {
	d, err := ParseDate("2025-03-04")
	require.NoError(t, err)

	data, err := json.Marshal(DailyTrend{Date: d, Amount: MustParseMoney("12.3")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-04","amount":"12.30"}`, string(data))
}

func TestOwner(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	shared := SharedOwner()
	assert.True(t, shared.IsShared())
	assert.True(t, shared.Permits(alice))
	assert.True(t, shared.Permits(bob))
	_, owned := shared.UserID()
	assert.False(t, owned)

	private := OwnedBy(alice)
	assert.False(t, private.IsShared())
	assert.True(t, private.Permits(alice))
	assert.False(t, private.Permits(bob))
	id, owned := private.UserID()
	assert.True(t, owned)
	assert.Equal(t, alice, id)

	var zero Owner
	assert.True(t, zero.IsShared())
}

func TestBudgetViewUsage(t *testing.T) {
	ym := YearMonth{Year: 2025, Month: 3}
	b := Budget{ID: 1, CategoryID: 2, MonthlyLimit: MustParseMoney("500"), Month: ym}
	cat := Category{ID: 2, Name: "Food", Color: "#FF5733", Icon: "utensils"}

	v := NewBudgetView(b, cat, MustParseMoney("125"))
	assert.Equal(t, "375.00", v.Remaining.String())
	assert.InDelta(t, 25.0, v.PercentageUsed, 1e-9)
	assert.Equal(t, "2025-03", v.MonthKey)
	assert.Equal(t, 3, v.Month)
	assert.False(t, v.OverBudget())

	over := NewBudgetView(b, cat, MustParseMoney("600"))
	assert.True(t, over.OverBudget())
	assert.Greater(t, over.PercentageUsed, 100.0)
}

func TestParsePaymentMethod(t *testing.T) {
	p, err := ParsePaymentMethod("net-banking")
	require.NoError(t, err)
	assert.Equal(t, PaymentNetBanking, p)

	p, err = ParsePaymentMethod("card")
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, p)

	_, err = ParsePaymentMethod("cheque")
	assert.Error(t, err)
}
