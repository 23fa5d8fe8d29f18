// Package policy decides which records a principal may see, create, edit or delete.
package policy

import (
	"github.com/trezcool/brightspark/core"
)

// Engine evaluates the access table. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules ruleSet
}

func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

func (e *Engine) grants(a Actor, rt core.ResourceType, action core.Action) []grant {
	var matched []grant
	for _, g := range e.rules[rt][a.Role()] {
		if g.covers(action) {
			matched = append(matched, g)
		}
	}
	return matched
}

// CanPerform reports whether the actor may perform the action on resources of type rt.
// r may be nil for list and create decisions, which then depend on the role only;
// detail, update and delete decisions without a resource are denied.
func (e *Engine) CanPerform(a Actor, rt core.ResourceType, action core.Action, r core.Resource) bool {
	if a.IsZero() || !rt.IsValid() {
		return false
	}
	if r != nil && r.ResourceType() != rt {
		return false
	}
	if a.IsPlatformAdmin() {
		return true
	}
	if r == nil && action.NeedsResource() {
		return false
	}

	for _, g := range e.grants(a, rt, action) {
		if r == nil || g.scope(a, r) {
			return true
		}
	}
	return false
}

// CanList reports whether the actor has any listing right on the resource type.
func (e *Engine) CanList(a Actor, rt core.ResourceType) bool {
	return e.CanPerform(a, rt, core.ActionViewList, nil)
}

// VisibilityFilter returns the predicate selecting the records of type rt the actor may see.
// It agrees with CanPerform(a, rt, ActionViewDetail, r) for every record.
func (e *Engine) VisibilityFilter(a Actor, rt core.ResourceType) func(core.Resource) bool {
	if !a.IsZero() && !a.IsPlatformAdmin() && len(e.grants(a, rt, core.ActionViewDetail)) == 0 {
		return func(core.Resource) bool { return false }
	}
	return func(r core.Resource) bool {
		return e.CanPerform(a, rt, core.ActionViewDetail, r)
	}
}
