package workflow

import "time"

// TerminationRequest - the upstream workflow record a termination or
// resignation benefit must reference. The engine consumes these records; it
// only creates one when the directory already shows the originating event.
type TerminationRequest struct {
	ID            string
	EmployeeID    string
	Status        string
	EffectiveDate time.Time
	CreatedAt     time.Time
}
