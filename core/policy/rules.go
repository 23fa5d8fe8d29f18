package policy

import (
	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

type grant struct {
	actions []core.Action
	scope   scope
}

func (g grant) covers(action core.Action) bool {
	for _, a := range g.actions {
		if a == action {
			return true
		}
	}
	return false
}

var (
	view   = []core.Action{core.ActionViewList, core.ActionViewDetail}
	manage = []core.Action{core.ActionCreate, core.ActionUpdate, core.ActionDelete}
	modify = []core.Action{core.ActionUpdate, core.ActionDelete}
	all    = append(append([]core.Action{}, view...), manage...)
)

type ruleSet map[core.ResourceType]map[user.Role][]grant

// defaultRules is the access table of every role but RolePlatformAdmin, which is allowed everything.
// A (type, role) pair absent from the table is denied everything.
func defaultRules() ruleSet {
	return ruleSet{
		core.TypeOrganization: {
			user.RoleOrgAdmin: {{view, inOwnOrg}},
		},
		core.TypeSubject: {
			user.RoleOrgAdmin: {{view, anyResource}},
			user.RoleEducator: {{view, anyResource}},
			user.RoleLearner:  {{view, anyResource}},
			user.RoleGuardian: {{view, anyResource}},
		},
		core.TypeLearningUnit: {
			user.RoleOrgAdmin: {{view, inOwnOrg}, {modify, inOwnOrg}},
			user.RoleEducator: {{view, inOwnOrg}, {manage, authoredBySelf}},
			user.RoleLearner:  {{view, inOwnOrg}},
			user.RoleGuardian: {{view, inOwnOrg}},
		},
		core.TypeAssignment: {
			user.RoleOrgAdmin: {{view, inOwnOrg}},
			user.RoleEducator: {{view, inOwnOrg}, {manage, authoredBySelf}},
			user.RoleLearner:  {{view, concernsSelf}},
			user.RoleGuardian: {{view, concernsAffiliated}},
		},
		core.TypeBadge: {
			user.RoleOrgAdmin: {{view, anyResource}},
			user.RoleEducator: {{view, anyResource}},
			user.RoleLearner:  {{view, anyResource}},
			user.RoleGuardian: {{view, anyResource}},
		},
		core.TypeBadgeAward: {
			user.RoleOrgAdmin: {{view, inOwnOrg}},
			user.RoleEducator: {{view, inOwnOrg}},
			user.RoleLearner:  {{view, concernsSelf}},
			user.RoleGuardian: {{view, concernsAffiliated}},
		},
		core.TypeProgress: {
			user.RoleOrgAdmin: {{view, inOwnOrg}},
			user.RoleEducator: {{view, inOwnOrg}},
			user.RoleLearner:  {{view, concernsSelf}},
			user.RoleGuardian: {{view, concernsAffiliated}},
		},
		core.TypeUser: {
			user.RoleOrgAdmin: {{view, inOwnOrg}, {manage, outranked}},
			user.RoleEducator: {{view, learnersInOwnOrg}},
		},
		core.TypeGuardianship: {
			user.RoleOrgAdmin: {{all, inOwnOrg}},
			user.RoleGuardian: {{view, guardedBySelf}},
		},
	}
}
