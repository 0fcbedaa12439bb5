package orchestrator

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/model"
)

// ErrInvalidCriteria is returned, wrapped, for criteria rejected before any
// source is queried. Match it with eris.Is or errors.Is.
var ErrInvalidCriteria = eris.New("orchestrator: invalid criteria")

// DataSourceError reports that no lead source produced a result. Primary is
// nil when no primary source is configured or it returned no leads.
type DataSourceError struct {
	Primary  error
	Fallback error
}

func (e *DataSourceError) Error() string {
	if e.Primary == nil {
		return fmt.Sprintf("orchestrator: fallback source failed: %v", e.Fallback)
	}
	return fmt.Sprintf("orchestrator: all lead sources failed: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *DataSourceError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Primary, e.Fallback} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsDataSourceError reports whether err is or wraps a DataSourceError.
func IsDataSourceError(err error) bool {
	var dse *DataSourceError
	return errors.As(err, &dse)
}

// Validate rejects criteria that cannot describe any lead.
func Validate(c model.LeadCriteria) error {
	if err := validateRange("revenue", c.Revenue); err != nil {
		return err
	}
	if err := validateRange("employees", c.Employees); err != nil {
		return err
	}
	if c.Limit < 0 {
		return eris.Wrapf(ErrInvalidCriteria, "limit must be >= 0 (got %d)", c.Limit)
	}
	return nil
}

func validateRange(name string, r *model.Range) error {
	if r == nil {
		return nil
	}
	if r.Min < 0 {
		return eris.Wrapf(ErrInvalidCriteria, "%s min must be >= 0 (got %d)", name, r.Min)
	}
	if r.Max > 0 && r.Max < r.Min {
		return eris.Wrapf(ErrInvalidCriteria, "%s range is inverted (%d > %d)", name, r.Min, r.Max)
	}
	return nil
}
