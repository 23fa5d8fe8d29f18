package policy

import (
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// scope decides whether a grant covers a concrete resource.
type scope func(a Actor, r core.Resource) bool

// member is a resource representing an account holding a role.
type member interface {
	MemberRole() user.Role
}

func anyResource(Actor, core.Resource) bool { return true }

func inOwnOrg(a Actor, r core.Resource) bool { return a.sameOrg(r) }

func authoredBySelf(a Actor, r core.Resource) bool {
	au, ok := r.(core.Authored)
	return ok && a.sameOrg(r) && au.AuthorID() == a.ID()
}

func concernsSelf(a Actor, r core.Resource) bool {
	ls, ok := r.(core.LearnerScoped)
	return ok && a.sameOrg(r) && core.ContainsString(ls.LearnerIDs(), a.ID())
}

func concernsAffiliated(a Actor, r core.Resource) bool {
	ls, ok := r.(core.LearnerScoped)
	if !ok || !a.sameOrg(r) {
		return false
	}
	for _, id := range ls.LearnerIDs() {
		if a.isAffiliatedTo(id) {
			return true
		}
	}
	return false
}

func guardedBySelf(a Actor, r core.Resource) bool {
	g, ok := r.(core.Guarded)
	return ok && a.sameOrg(r) && g.GuardianRef() == a.ID()
}

// outranked matches accounts of the actor's org holding a lower role.
func outranked(a Actor, r core.Resource) bool {
	m, ok := r.(member)
	return ok && a.sameOrg(r) && a.Outranks(m.MemberRole())
}

func learnersInOwnOrg(a Actor, r core.Resource) bool {
	m, ok := r.(member)
	return ok && a.sameOrg(r) && m.MemberRole() == user.RoleLearner
}
