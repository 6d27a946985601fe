package disbursement

import "errors"

var (
	ErrAssignmentNotFound         = errors.New("disbursement assignment not found")
	ErrMissingWorkflowReference   = errors.New("no workflow record to link the disbursement to")
	ErrInvalidStatus              = errors.New("invalid disbursement status")
	ErrPaymentDateWithoutApproval = errors.New("payment date requires approved status")
)
