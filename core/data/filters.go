package data

import (
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/user"
)

// Filter narrows a listing. Filters run after the visibility rules, so they never widen it.
type Filter func(core.Resource) bool

// WithRole keeps the accounts holding role.
func WithRole(role user.Role) Filter {
	return func(r core.Resource) bool {
		usr, ok := r.(user.User)
		return ok && usr.Role == role
	}
}

// InSubject keeps the learning units and assignments of the subject.
func InSubject(subjectID string) Filter {
	return func(r core.Resource) bool {
		switch v := r.(type) {
		case lms.LearningUnit:
			return v.SubjectID == subjectID
		case lms.Assignment:
			return v.SubjectID == subjectID
		}
		return false
	}
}

// ListFilters builds the filters of a listing of rt from raw query values; empty values are ignored.
// A filter that does not apply to rt is a validation error.
func ListFilters(rt core.ResourceType, role, subjectID string) ([]Filter, error) {
	role, subjectID = core.CleanString(role), core.CleanString(subjectID)
	var filters []Filter

	if role != "" {
		if rt != core.TypeUser {
			return nil, fieldError("role", "only users can be filtered by role")
		}
		r := user.Role(role)
		if !r.IsValid() {
			return nil, fieldError("role", "unknown role "+role)
		}
		filters = append(filters, WithRole(r))
	}

	if subjectID != "" {
		if rt != core.TypeLearningUnit && rt != core.TypeAssignment {
			return nil, fieldError("subject_id", "only learning units and assignments can be filtered by subject")
		}
		filters = append(filters, InSubject(subjectID))
	}
	return filters, nil
}

func keep(r core.Resource, filters []Filter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
