package core

import "time"

// ResourceType names a kind of record guarded by the policy engine.
type ResourceType string

const (
	TypeOrganization ResourceType = "organization"
	TypeSubject      ResourceType = "subject"
	TypeLearningUnit ResourceType = "learning_unit"
	TypeAssignment   ResourceType = "assignment"
	TypeBadge        ResourceType = "badge"
	TypeBadgeAward   ResourceType = "badge_award"
	TypeProgress     ResourceType = "progress_record"
	TypeUser         ResourceType = "user"
	TypeGuardianship ResourceType = "guardianship"
)

var AllResourceTypes = []ResourceType{
	TypeOrganization,
	TypeSubject,
	TypeLearningUnit,
	TypeAssignment,
	TypeBadge,
	TypeBadgeAward,
	TypeProgress,
	TypeUser,
	TypeGuardianship,
}

func (rt ResourceType) IsValid() bool {
	for _, t := range AllResourceTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// Action is something a principal attempts on a resource type.
type Action string

const (
	ActionViewList   Action = "view-list"
	ActionViewDetail Action = "view-detail"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
)

var AllActions = []Action{ActionViewList, ActionViewDetail, ActionCreate, ActionUpdate, ActionDelete}

// NeedsResource reports whether deciding the action requires a concrete resource.
func (a Action) NeedsResource() bool {
	return a == ActionViewDetail || a == ActionUpdate || a == ActionDelete
}

// Resource is a record stored by the backing store and guarded by the policy engine.
// Implementations are values: Identify and Touch return updated copies.
type Resource interface {
	ResourceType() ResourceType
	ResourceID() string
	// Identify sets the identifier and creation timestamps of a new record.
	Identify(id string, at time.Time) Resource
	// Touch sets the modification timestamp, if the record has one.
	Touch(at time.Time) Resource
}

// Patch describes a modification of an existing Resource.
type Patch interface {
	Apply(r Resource) (Resource, error)
}

// PatchFunc adapts a function to the Patch interface.
type PatchFunc func(r Resource) (Resource, error)

func (fn PatchFunc) Apply(r Resource) (Resource, error) { return fn(r) }

// Resource accessors the policy engine reads.
type (
	// Tenanted resources belong to an organization.
	Tenanted interface {
		OrgAffiliation() string
	}

	// Authored resources have a principal owning their mutation rights.
	Authored interface {
		AuthorID() string
	}

	// LearnerScoped resources concern one or more learners.
	LearnerScoped interface {
		LearnerIDs() []string
	}

	// Guarded resources name the guardian they belong to.
	Guarded interface {
		GuardianRef() string
	}
)
