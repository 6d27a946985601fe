package compensation

import "errors"

var (
	ErrComponentNotFound      = errors.New("compensation component not found")
	ErrComponentNotApproved   = errors.New("compensation component is not approved")
	ErrComponentNameExists    = errors.New("compensation component name already exists for this kind")
	ErrComponentAlreadyFinal  = errors.New("compensation component approval already decided")
	ErrInvalidKind            = errors.New("invalid compensation component kind")
	ErrNotDisbursable         = errors.New("compensation component kind is not disbursable")
	ErrAssignmentNotFound     = errors.New("employee component assignment not found")
	ErrAssignmentNotRecurring = errors.New("only recurring components can be assigned directly")
)
