package queryir

import (
	"errors"
	"fmt"
)

// Validate checks that every predicate in q names a known field and
// compares it the way its Kind allows. All problems are joined into
// one error.
func Validate(q Select) error {
	v := &validator{}
	if q.Filter != nil {
		v.validatePredicate(q.Filter)
	}
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.expectKind(pred.Field, KindText, "equality")
	case AtLeast:
		v.expectKind(pred.Field, KindCount, "lower bound")
		if pred.Value < 0 {
			v.addError("field %q: lower bound must not be negative, got %d", pred.Field, pred.Value)
		}
	case And:
		for _, sub := range pred.Predicates {
			if sub == nil {
				v.addError("nil predicate in conjunction")
				continue
			}
			v.validatePredicate(sub)
		}
	default:
		v.addError("unsupported predicate type: %T", p)
	}
}

func (v *validator) expectKind(f Field, want Kind, op string) {
	switch got := f.Kind(); got {
	case KindUnknown:
		v.addError("unknown field %q", f)
	case want:
	default:
		v.addError("field %q does not support %s comparison", f, op)
	}
}
