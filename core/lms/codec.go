package lms

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// ErrUnknownType is returned when a resource type cannot be resolved.
var ErrUnknownType = errors.New("unknown resource type")

var typePaths = map[core.ResourceType]string{
	core.TypeOrganization: "organizations",
	core.TypeSubject:      "subjects",
	core.TypeLearningUnit: "learning-units",
	core.TypeAssignment:   "assignments",
	core.TypeBadge:        "badges",
	core.TypeBadgeAward:   "badge-awards",
	core.TypeProgress:     "progress",
	core.TypeUser:         "users",
	core.TypeGuardianship: "guardianships",
}

// PathOf returns the URL path segment naming the resource type.
func PathOf(rt core.ResourceType) string {
	return typePaths[rt]
}

// ParseType resolves a resource type from its name ("learning_unit") or its path ("learning-units").
func ParseType(s string) (core.ResourceType, error) {
	s = core.CleanString(s, true /* lower */)
	if rt := core.ResourceType(s); rt.IsValid() {
		return rt, nil
	}
	for rt, path := range typePaths {
		if path == s {
			return rt, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownType, "%q", s)
}

// Decode unmarshals a stored document into its concrete record type.
func Decode(rt core.ResourceType, doc []byte) (core.Resource, error) {
	r, err := newRecord(rt, doc)
	return r, errors.Wrapf(err, "decoding %s", rt)
}

// DecodeDraft unmarshals a client payload describing a record to create.
// Accounts are created from a user.NewUser instead, see DecodeNewUser.
func DecodeDraft(rt core.ResourceType, body []byte) (core.Resource, error) {
	if rt == core.TypeUser {
		return nil, errors.New("accounts are created from a user.NewUser")
	}
	r, err := newRecord(rt, body)
	if err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "malformed payload"))
	}
	// ids and timestamps are assigned by the store
	return r.Identify("", time.Time{}), nil
}

// DecodeNewUser unmarshals a client payload describing an account to create.
func DecodeNewUser(body []byte) (user.NewUser, error) {
	var nu user.NewUser
	if err := json.Unmarshal(body, &nu); err != nil {
		return user.NewUser{}, core.NewValidationError(errors.Wrap(err, "malformed payload"))
	}
	return nu, nil
}

// DecodePatch unmarshals a client payload into the typed patch of the resource type.
func DecodePatch(rt core.ResourceType, body []byte) (core.Patch, error) {
	var patch core.Patch
	switch rt {
	case core.TypeOrganization:
		patch = &OrganizationPatch{}
	case core.TypeSubject:
		patch = &SubjectPatch{}
	case core.TypeLearningUnit:
		patch = &LearningUnitPatch{}
	case core.TypeAssignment:
		patch = &AssignmentPatch{}
	case core.TypeBadge:
		patch = &BadgePatch{}
	case core.TypeBadgeAward:
		patch = &BadgeAwardPatch{}
	case core.TypeProgress:
		patch = &ProgressPatch{}
	case core.TypeUser:
		patch = &user.UpdateUser{}
	case core.TypeGuardianship:
		return nil, core.NewValidationError(errors.New("guardianships cannot be modified, delete and recreate them"))
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", rt)
	}
	if err := json.Unmarshal(body, patch); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "malformed payload"))
	}
	return patch, nil
}

func newRecord(rt core.ResourceType, data []byte) (core.Resource, error) {
	var (
		r   core.Resource
		err error
	)
	switch rt {
	case core.TypeOrganization:
		var v Organization
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeSubject:
		var v Subject
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeLearningUnit:
		var v LearningUnit
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeAssignment:
		var v Assignment
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeBadge:
		var v Badge
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeBadgeAward:
		var v BadgeAward
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeProgress:
		var v ProgressRecord
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeUser:
		var v user.User
		err = json.Unmarshal(data, &v)
		r = v
	case core.TypeGuardianship:
		var v Guardianship
		err = json.Unmarshal(data, &v)
		r = v
	default:
		return nil, errors.Wrapf(ErrUnknownType, "%q", rt)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// TypeNames lists the accepted resource type spellings, for usage messages.
func TypeNames() string {
	names := make([]string, 0, len(core.AllResourceTypes))
	for _, rt := range core.AllResourceTypes {
		names = append(names, PathOf(rt))
	}
	return strings.Join(names, ", ")
}
