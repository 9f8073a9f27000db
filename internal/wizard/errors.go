package wizard

import (
	"errors"
	"fmt"

	"trendies_market_v1/internal/schema"
)

var (
	ErrBusy         = errors.New("wizard is busy")
	ErrFirstStep    = errors.New("already at the first step")
	ErrLastStep     = errors.New("already at the last step")
	ErrNotFinalStep = errors.New("submit is only allowed from the final step")
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownSlot  = errors.New("unknown photo slot")
	ErrNoSession    = errors.New("no active wizard session")
)

// StepValidationError 当前步骤字段校验未通过
type StepValidationError struct {
	Step   int
	Fields schema.FieldErrors
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("step %d has invalid fields: %v", e.Step, e.Fields.Paths())
}
