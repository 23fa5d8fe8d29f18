package policy

import (
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// Actor is a Principal together with the learners it is affiliated to.
// Only guardians have affiliated learners.
type Actor struct {
	user.Principal
	Learners []string
}

func NewActor(p user.Principal, learners ...string) Actor {
	if p.Role() != user.RoleGuardian {
		learners = nil
	}
	return Actor{Principal: p, Learners: learners}
}

func (a Actor) sameOrg(r core.Resource) bool {
	org, ok := a.OrgAffiliation()
	if !ok {
		return false
	}
	t, ok := r.(core.Tenanted)
	return ok && t.OrgAffiliation() == org
}

func (a Actor) isAffiliatedTo(learnerID string) bool {
	return core.ContainsString(a.Learners, learnerID)
}
