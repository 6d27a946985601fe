package payroll

import (
	"github.com/shopspring/decimal"
)

// LineItem - one labeled monetary input to the calculator
type LineItem struct {
	Label  string
	Amount decimal.Decimal
}

// CalculationInput holds the resolved, approved configuration values for one
// employee and one pay period. Empty slices are valid inputs: an employee with
// no allowances, bonuses or benefits still produces a settlement.
type CalculationInput struct {
	BaseSalary     decimal.Decimal
	Allowances     []LineItem
	Bonuses        []LineItem
	Benefits       []LineItem
	Penalties      []LineItem
	TaxRatePercent decimal.Decimal
}

type CalculationResult struct {
	Gross           decimal.Decimal
	TaxAmount       decimal.Decimal
	PenaltiesAmount decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

type SettlementCalculator struct {
}

func NewSettlementCalculator() *SettlementCalculator {
	return &SettlementCalculator{}
}

var hundred = decimal.NewFromInt(100)

// Calculate derives the settlement amounts in a fixed order, rounding every
// derived value to 2 decimal places so repeated runs cannot drift. Net pay may
// come out negative; the caller records that as an exception instead of
// clamping it.
func (c *SettlementCalculator) Calculate(in CalculationInput) CalculationResult {
	gross := in.BaseSalary
	for _, item := range in.Allowances {
		gross = gross.Add(item.Amount)
	}
	for _, item := range in.Bonuses {
		gross = gross.Add(item.Amount)
	}
	for _, item := range in.Benefits {
		gross = gross.Add(item.Amount)
	}
	gross = gross.Round(2)

	taxAmount := gross.Mul(in.TaxRatePercent).Div(hundred).Round(2)

	penaltiesAmount := decimal.Zero
	for _, item := range in.Penalties {
		penaltiesAmount = penaltiesAmount.Add(item.Amount)
	}
	penaltiesAmount = penaltiesAmount.Round(2)

	totalDeductions := taxAmount.Add(penaltiesAmount).Round(2)
	netPay := gross.Sub(totalDeductions).Round(2)

	return CalculationResult{
		Gross:           gross,
		TaxAmount:       taxAmount,
		PenaltiesAmount: penaltiesAmount,
		TotalDeductions: totalDeductions,
		NetPay:          netPay,
	}
}
