package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculate_FullBreakdown(t *testing.T) {
	calc := NewSettlementCalculator()

	input := CalculationInput{
		BaseSalary: d("9000"),
		Allowances: []LineItem{
			{Label: "housing", Amount: d("1500")},
			{Label: "transport", Amount: d("500")},
		},
		Bonuses: []LineItem{
			{Label: "signing bonus", Amount: d("1000")},
		},
		Benefits: []LineItem{
			{Label: "termination benefit", Amount: d("10000")},
		},
		Penalties: []LineItem{
			{Label: "late return of equipment", Amount: d("350")},
		},
		TaxRatePercent: d("10"),
	}

	result := calc.Calculate(input)

	assert.Equal(t, "22000", result.Gross.String())
	assert.Equal(t, "2200", result.TaxAmount.String())
	assert.Equal(t, "350", result.PenaltiesAmount.String())
	assert.Equal(t, "2550", result.TotalDeductions.String())
	assert.Equal(t, "19450", result.NetPay.String())
}

func TestCalculate_BaseSalaryOnly(t *testing.T) {
	calc := NewSettlementCalculator()

	result := calc.Calculate(CalculationInput{
		BaseSalary:     d("13000"),
		TaxRatePercent: d("10"),
	})

	assert.Equal(t, "13000", result.Gross.String())
	assert.Equal(t, "1300", result.TaxAmount.String())
	assert.Equal(t, "0", result.PenaltiesAmount.String())
	assert.Equal(t, "1300", result.TotalDeductions.String())
	assert.Equal(t, "11700", result.NetPay.String())
}

func TestCalculate_ZeroInput(t *testing.T) {
	calc := NewSettlementCalculator()

	result := calc.Calculate(CalculationInput{})

	assert.True(t, result.Gross.IsZero())
	assert.True(t, result.TaxAmount.IsZero())
	assert.True(t, result.TotalDeductions.IsZero())
	assert.True(t, result.NetPay.IsZero())
}

func TestCalculate_NegativeNetPay(t *testing.T) {
	calc := NewSettlementCalculator()

	// Penalties exceeding gross must come through as a negative net pay,
	// not get clamped to zero.
	result := calc.Calculate(CalculationInput{
		BaseSalary: d("1000"),
		Penalties: []LineItem{
			{Label: "damages", Amount: d("2000")},
		},
		TaxRatePercent: d("10"),
	})

	assert.Equal(t, "1000", result.Gross.String())
	assert.Equal(t, "100", result.TaxAmount.String())
	assert.Equal(t, "-1100", result.NetPay.String())
	assert.True(t, result.NetPay.IsNegative())
}

func TestCalculate_RoundsEachStep(t *testing.T) {
	calc := NewSettlementCalculator()

	// Gross is rounded before the tax is derived from it, so the tax is
	// computed on 1000.01, not on the raw sum.
	result := calc.Calculate(CalculationInput{
		BaseSalary:     d("1000.005"),
		TaxRatePercent: d("15"),
	})

	assert.Equal(t, "1000.01", result.Gross.String())
	assert.Equal(t, "150", result.TaxAmount.String())
	assert.Equal(t, "850.01", result.NetPay.String())
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewSettlementCalculator()

	input := CalculationInput{
		BaseSalary: d("7333.33"),
		Allowances: []LineItem{
			{Label: "meal", Amount: d("123.45")},
		},
		Penalties: []LineItem{
			{Label: "fine", Amount: d("0.99")},
		},
		TaxRatePercent: d("12.5"),
	}

	first := calc.Calculate(input)
	second := calc.Calculate(input)

	assert.True(t, first.Gross.Equal(second.Gross))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.TotalDeductions.Equal(second.TotalDeductions))
	assert.True(t, first.NetPay.Equal(second.NetPay))
}
