package schema

import (
	"fmt"
	"strings"

	"github.com/tesler-ui/datasync/internal/model"
)

// Validation error codes (E200-E299).
const (
	ErrSchemaMismatch = "E200" // document violates the structural schema

	ErrDuplicateView   = "E201" // duplicate view name within a screen
	ErrDuplicateWidget = "E202" // duplicate widget name within a view
	ErrDuplicateBC     = "E203" // duplicate BC name within a screen
	ErrUnknownBC       = "E204" // widget references an undeclared BC
	ErrUnknownParentBC = "E205" // BC parentName references an undeclared BC
	ErrParentCycle     = "E206" // BC parent chain forms a cycle
	ErrUnknownView     = "E207" // primaryView references an undeclared view
	ErrHierarchyLevel  = "E208" // hierarchy level references an undeclared BC
)

// ValidationError is one schema or cross-reference problem in a screen
// document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// DocumentError aggregates every validation error of one document.
type DocumentError struct {
	Name   string
	Errors []ValidationError
}

func (e *DocumentError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%s: %s", e.Name, strings.Join(msgs, "; "))
}

// validateReferences runs the cross-reference checks CUE cannot express
// over one decoded screen. Returns all errors found (does not fail-fast).
func validateReferences(screen *model.ScreenMeta) []ValidationError {
	var errs []ValidationError

	bcNames := make(map[string]bool)
	for i, bc := range screen.BCs {
		if bcNames[bc.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bc[%d].name", i),
				Message: fmt.Sprintf("duplicate BC name: %q", bc.Name),
				Code:    ErrDuplicateBC,
			})
		}
		bcNames[bc.Name] = true
	}

	for i, bc := range screen.BCs {
		if bc.ParentName != "" && !bcNames[bc.ParentName] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bc[%d].parentName", i),
				Message: fmt.Sprintf("BC %q declares undeclared parent %q", bc.Name, bc.ParentName),
				Code:    ErrUnknownParentBC,
			})
		}
	}

	errs = append(errs, validateParentChains(screen)...)

	if screen.PrimaryView != "" && screen.FindView(screen.PrimaryView) == nil {
		errs = append(errs, ValidationError{
			Field:   "primaryView",
			Message: fmt.Sprintf("primary view %q is not declared", screen.PrimaryView),
			Code:    ErrUnknownView,
		})
	}

	viewNames := make(map[string]bool)
	for i, view := range screen.Views {
		if viewNames[view.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("views[%d].name", i),
				Message: fmt.Sprintf("duplicate view name: %q", view.Name),
				Code:    ErrDuplicateView,
			})
		}
		viewNames[view.Name] = true

		widgetNames := make(map[string]bool)
		for j, w := range view.Widgets {
			field := fmt.Sprintf("views[%d].widgets[%d]", i, j)

			if widgetNames[w.Name] {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate widget name: %q", w.Name),
					Code:    ErrDuplicateWidget,
				})
			}
			widgetNames[w.Name] = true

			if !bcNames[w.BCName] {
				errs = append(errs, ValidationError{
					Field:   field + ".bcName",
					Message: fmt.Sprintf("widget %q references undeclared BC %q", w.Name, w.BCName),
					Code:    ErrUnknownBC,
				})
			}

			if sc := w.ShowCondition; sc != nil && !bcNames[sc.BCName] {
				errs = append(errs, ValidationError{
					Field:   field + ".showCondition.bcName",
					Message: fmt.Sprintf("show condition of widget %q references undeclared BC %q", w.Name, sc.BCName),
					Code:    ErrUnknownBC,
				})
			}

			for k, lvl := range w.Options.Hierarchy {
				if !bcNames[lvl.BCName] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.options.hierarchy[%d].bcName", field, k),
						Message: fmt.Sprintf("hierarchy level of widget %q references undeclared BC %q", w.Name, lvl.BCName),
						Code:    ErrHierarchyLevel,
					})
				}
			}
		}
	}

	return errs
}

// validateParentChains rejects BC parent links that loop back on
// themselves. The tree resolver walks parent chains; a cycle would walk
// forever.
func validateParentChains(screen *model.ScreenMeta) []ValidationError {
	parents := make(map[string]string)
	for _, bc := range screen.BCs {
		parents[bc.Name] = bc.ParentName
	}

	var errs []ValidationError
	for i, bc := range screen.BCs {
		seen := map[string]bool{bc.Name: true}
		for cur := parents[bc.Name]; cur != ""; cur = parents[cur] {
			if seen[cur] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("bc[%d].parentName", i),
					Message: fmt.Sprintf("BC %q is part of a parent cycle", bc.Name),
					Code:    ErrParentCycle,
				})
				break
			}
			seen[cur] = true
		}
	}
	return errs
}
