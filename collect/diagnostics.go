package collect

import (
	"github.com/satishbabariya/expand-go/diagnostics"
	"github.com/satishbabariya/expand-go/hirexpand"
)

// Diagnostics converts r into located errors and warnings. Partial
// expansions and sites beyond the depth budget become warnings.
func (r *Result) Diagnostics(db *hirexpand.Database) *diagnostics.Diagnostics {
	d := diagnostics.NewDiagnostics()
	for _, o := range r.Outcomes {
		if o.Err == nil {
			continue
		}
		span, ok := o.Err.Span, o.Err.Located
		if !ok {
			span, ok = db.OriginalSpan(o.Node)
		}
		if !ok {
			continue
		}
		switch {
		case o.Err.Kind == hirexpand.RuleMatchFailure && o.Expansion != nil:
			d.PushWarning(diagnostics.NewPartialExpansionWarning(o.Name, o.Err.Message, span))
		case o.Err.Kind == hirexpand.ReparseFailure:
			d.PushError(diagnostics.NewReparseFailureError(o.Fragment.String(), span).WithChain(o.Err.Chain))
		default:
			e := o.Err.Diagnostic()
			d.PushError(diagnostics.NewExpansionError(e.Reason(), e.Message(), span).WithChain(e.Chain()))
		}
	}
	for _, u := range r.Unresolved {
		if span, ok := db.OriginalSpan(u.Node); ok {
			d.PushError(diagnostics.NewDefinitionNotFoundError(u.Name, span))
		}
	}
	for _, s := range r.Truncated {
		if span, ok := db.OriginalSpan(s.Node); ok {
			d.PushWarning(diagnostics.NewRecursionLimitWarning(s.Depth, span))
		}
	}
	return d
}
