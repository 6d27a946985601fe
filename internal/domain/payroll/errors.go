package payroll

import "errors"

var (
	ErrRunNotFound          = errors.New("payroll run not found")
	ErrRunAlreadyExists     = errors.New("payroll run already exists for this period")
	ErrRunFinalized         = errors.New("payroll run is finalized, settlements are immutable")
	ErrInvalidRunTransition = errors.New("invalid payroll run status transition")
	ErrInvalidPeriod        = errors.New("invalid payroll period")
	ErrSettlementNotFound   = errors.New("employee settlement not found")
	ErrPayslipNotFound      = errors.New("payslip not found")
	ErrPenaltiesNotFound    = errors.New("employee penalties not found")
)
