package data

import (
	"context"
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/policy"
	"github.com/trezcool/brightspark/core/user"
)

// NewValidator returns a validator knowing the validation tags of every entity.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	lms.InitValidators(validate, translator)
	return validate
}

// Facade enforces the policy on every read and write against the Store.
type Facade struct {
	store      Store
	dir        *Directory
	authz      *policy.Engine
	validate   *validator.Validate
	translator ut.Translator
	mailer     core.EmailService // optional
	log        core.Logger
}

func NewFacade(
	store Store,
	authz *policy.Engine,
	validate *validator.Validate,
	translator ut.Translator,
	mailer core.EmailService,
	log core.Logger,
) *Facade {
	return &Facade{
		store:      store,
		dir:        NewDirectory(store),
		authz:      authz,
		validate:   validate,
		translator: translator,
		mailer:     mailer,
		log:        log,
	}
}

// Directory returns the account directory backed by the façade's store.
func (f *Facade) Directory() *Directory { return f.dir }

// Actor resolves the principal into a policy.Actor, loading a guardian's affiliated learners.
func (f *Facade) Actor(ctx context.Context, p user.Principal) (policy.Actor, error) {
	if p.Role() != user.RoleGuardian {
		return policy.NewActor(p), nil
	}
	records, err := f.store.List(ctx, core.TypeGuardianship)
	if err != nil {
		return policy.Actor{}, errors.Wrap(err, "listing guardianships")
	}
	org, _ := p.OrgAffiliation()
	var learners []string
	for _, r := range records {
		if g, ok := r.(lms.Guardianship); ok && g.GuardianID == p.ID() && g.OrgID == org {
			learners = append(learners, g.LearnerID)
		}
	}
	return policy.NewActor(p, learners...), nil
}

// List returns the records of type rt visible to p and kept by every filter.
// A role without any listing right on rt gets core.ErrPermissionDenied.
func (f *Facade) List(ctx context.Context, p user.Principal, rt core.ResourceType, filters ...Filter) ([]core.Resource, error) {
	actor, err := f.begin(ctx, p, rt)
	if err != nil {
		return nil, err
	}
	if !f.can(actor, rt, core.ActionViewList, nil) {
		return nil, errors.Wrapf(core.ErrPermissionDenied, "listing %s", rt)
	}

	records, err := f.store.List(ctx, rt)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", rt)
	}
	visible := f.authz.VisibilityFilter(actor, rt)
	result := make([]core.Resource, 0, len(records))
	for _, r := range records {
		if visible(r) && keep(r, filters) {
			result = append(result, r)
		}
	}
	return result, nil
}

// Get returns the record of type rt identified by id.
func (f *Facade) Get(ctx context.Context, p user.Principal, rt core.ResourceType, id string) (core.Resource, error) {
	actor, err := f.begin(ctx, p, rt)
	if err != nil {
		return nil, err
	}
	r, err := f.store.Get(ctx, rt, id)
	if err != nil {
		return nil, err
	}
	if !f.can(actor, rt, core.ActionViewDetail, r) {
		return nil, f.refuse(actor, rt, id)
	}
	return r, nil
}

// Create stamps the draft with its owner and tenant, validates it, then inserts it.
// Denied creations never reach the store.
func (f *Facade) Create(ctx context.Context, p user.Principal, rt core.ResourceType, draft core.Resource) (core.Resource, error) {
	actor, err := f.begin(ctx, p, rt)
	if err != nil {
		return nil, err
	}
	if draft == nil || draft.ResourceType() != rt {
		return nil, core.NewValidationError(errors.Errorf("expected a %s draft", rt))
	}
	if !f.can(actor, rt, core.ActionCreate, nil) {
		return nil, errors.Wrapf(core.ErrPermissionDenied, "creating %s", rt)
	}
	return f.create(ctx, actor, draft)
}

// CreateUser creates an account, applying the password policy.
// Org admins may only create accounts in their organization.
func (f *Facade) CreateUser(ctx context.Context, p user.Principal, nu user.NewUser) (user.User, error) {
	actor, err := f.begin(ctx, p, core.TypeUser)
	if err != nil {
		return user.User{}, err
	}
	if !f.can(actor, core.TypeUser, core.ActionCreate, nil) {
		return user.User{}, errors.Wrap(core.ErrPermissionDenied, "creating user")
	}

	nu.Clean()
	if org, ok := actor.OrgAffiliation(); ok {
		nu.OrgID = org
	}
	if err := core.ValidateStruct(f.validate, f.translator, nu); err != nil {
		return user.User{}, err
	}
	usr, err := nu.User()
	if err != nil {
		return user.User{}, err
	}

	created, err := f.create(ctx, actor, usr)
	if err != nil {
		return user.User{}, err
	}
	return created.(user.User), nil
}

func (f *Facade) create(ctx context.Context, actor policy.Actor, draft core.Resource) (core.Resource, error) {
	rt := draft.ResourceType()
	draft, err := f.stamp(ctx, actor, draft)
	if err != nil {
		return nil, err
	}
	if !f.can(actor, rt, core.ActionCreate, draft) {
		return nil, errors.Wrapf(core.ErrPermissionDenied, "creating %s", rt)
	}
	if err := core.ValidateStruct(f.validate, f.translator, draft); err != nil {
		return nil, err
	}
	if usr, ok := draft.(user.User); ok {
		if err := user.CheckAffiliation(usr.Role, usr.OrgID); err != nil {
			return nil, affiliationError("org_id", err)
		}
		if err := f.checkEmailAvailable(ctx, usr.Email, ""); err != nil {
			return nil, err
		}
	}

	created, err := f.store.Insert(ctx, draft)
	if err != nil {
		return nil, errors.Wrapf(err, "inserting %s", rt)
	}
	if a, ok := created.(lms.Assignment); ok {
		f.notifyAssignees(ctx, a)
	}
	return created, nil
}

// Update applies the patch to the record identified by id.
// Permission is checked on the stored record and on its patched version:
// an update putting the record out of the caller's reach is denied and nothing is written.
// The payload is only validated once the caller is known to hold the update right.
func (f *Facade) Update(ctx context.Context, p user.Principal, rt core.ResourceType, id string, patch core.Patch) (core.Resource, error) {
	actor, err := f.begin(ctx, p, rt)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, core.NewValidationError(errors.New("missing patch"))
	}
	cur, err := f.store.Get(ctx, rt, id)
	if err != nil {
		return nil, err
	}
	if !f.can(actor, rt, core.ActionUpdate, cur) {
		return nil, f.refuse(actor, rt, id)
	}

	if err := f.validatePatch(patch); err != nil {
		return nil, err
	}
	if email := patchedEmail(patch); email != "" {
		if err := f.checkEmailAvailable(ctx, email, id); err != nil {
			return nil, err
		}
	}
	assignees := patchedAssignees(patch)
	var accounts map[string]user.User
	if assignees != nil {
		if accounts, err = f.accounts(ctx, assignees); err != nil {
			return nil, err
		}
	}

	guard := core.PatchFunc(func(cur core.Resource) (core.Resource, error) {
		if !f.can(actor, rt, core.ActionUpdate, cur) {
			return nil, f.refuse(actor, rt, id)
		}
		next, err := patch.Apply(cur)
		if err != nil {
			return nil, err
		}
		if !f.can(actor, rt, core.ActionUpdate, next) {
			return nil, errors.Wrapf(core.ErrPermissionDenied, "%s %s: update would put the record out of reach", rt, id)
		}
		switch n := next.(type) {
		case user.User:
			if err := user.CheckAffiliation(n.Role, n.OrgID); err != nil {
				return nil, affiliationError("role", err)
			}
		case lms.Assignment:
			if assignees != nil {
				if err := checkAssignees(n.StudentIDs, accounts, n.OrgID); err != nil {
					return nil, err
				}
			}
		}
		if err := core.ValidateStruct(f.validate, f.translator, next); err != nil {
			return nil, err
		}
		return next, nil
	})
	return f.store.Update(ctx, rt, id, guard)
}

// Delete removes the record identified by id.
func (f *Facade) Delete(ctx context.Context, p user.Principal, rt core.ResourceType, id string) error {
	actor, err := f.begin(ctx, p, rt)
	if err != nil {
		return err
	}
	return f.store.Delete(ctx, rt, id, func(cur core.Resource) error {
		if !f.can(actor, rt, core.ActionDelete, cur) {
			return f.refuse(actor, rt, id)
		}
		return nil
	})
}

func (f *Facade) begin(ctx context.Context, p user.Principal, rt core.ResourceType) (policy.Actor, error) {
	if !rt.IsValid() {
		return policy.Actor{}, errors.Wrapf(core.ErrNotFound, "resource type %q", rt)
	}
	return f.Actor(ctx, p)
}

func (f *Facade) can(a policy.Actor, rt core.ResourceType, action core.Action, r core.Resource) bool {
	allowed := f.authz.CanPerform(a, rt, action, r)
	policyDecisions.WithLabelValues(string(rt), string(action), outcome(allowed)).Inc()
	return allowed
}

// refuse reports a forbidden existing record: roles that may not even list the type
// cannot tell it from an absent one.
func (f *Facade) refuse(a policy.Actor, rt core.ResourceType, id string) error {
	if !f.authz.CanList(a, rt) {
		return errors.Wrapf(core.ErrNotFound, "%s %s", rt, id)
	}
	return errors.Wrapf(core.ErrPermissionDenied, "%s %s", rt, id)
}

func (f *Facade) validatePatch(patch core.Patch) error {
	if reflect.Indirect(reflect.ValueOf(patch)).Kind() != reflect.Struct {
		return nil
	}
	return core.ValidateStruct(f.validate, f.translator, patch)
}

// stamp fills the ownership and tenant fields of a draft, and checks the accounts it references.
func (f *Facade) stamp(ctx context.Context, a policy.Actor, draft core.Resource) (core.Resource, error) {
	org, affiliated := a.OrgAffiliation()

	switch d := draft.(type) {
	case lms.LearningUnit:
		if affiliated {
			d.OrgID, d.CreatedBy = org, a.ID()
		}
		return d, nil

	case lms.Assignment:
		if affiliated {
			d.OrgID, d.TeacherID = org, a.ID()
		}
		accounts, err := f.accounts(ctx, d.StudentIDs)
		if err != nil {
			return nil, err
		}
		if err := checkAssignees(d.StudentIDs, accounts, d.OrgID); err != nil {
			return nil, err
		}
		return d, nil

	case lms.BadgeAward:
		learner, err := f.member(ctx, d.UserID, "user_id", user.RoleLearner)
		if err != nil {
			return nil, err
		}
		d.OrgID = learner.OrgID
		return d, nil

	case lms.ProgressRecord:
		learner, err := f.member(ctx, d.StudentID, "student_id", user.RoleLearner)
		if err != nil {
			return nil, err
		}
		d.OrgID = learner.OrgID
		if d.Attempts == 0 {
			d.Attempts = 1
		}
		return d, nil

	case lms.Guardianship:
		learner, err := f.member(ctx, d.LearnerID, "learner_id", user.RoleLearner)
		if err != nil {
			return nil, err
		}
		guardian, err := f.member(ctx, d.GuardianID, "guardian_id", user.RoleGuardian)
		if err != nil {
			return nil, err
		}
		if guardian.OrgID != learner.OrgID {
			return nil, fieldError("guardian_id", "guardian and learner belong to different organizations")
		}
		d.OrgID = learner.OrgID
		return d, nil

	case user.User:
		d.Email = core.CleanString(d.Email, true /* lower */)
		if affiliated {
			d.OrgID = org
		}
		return d, nil
	}
	return draft, nil
}

// member returns the account identified by id, which must hold role.
func (f *Facade) member(ctx context.Context, id, field string, role user.Role) (user.User, error) {
	usr, err := f.dir.FindByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return user.User{}, fieldError(field, "unknown "+strings.ToLower(role.Name())+" "+id)
	} else if err != nil {
		return user.User{}, err
	}
	if usr.Role != role {
		return user.User{}, fieldError(field, id+" is not a "+strings.ToLower(role.Name()))
	}
	return usr, nil
}

// accounts resolves the given account ids; unknown ids are left out.
func (f *Facade) accounts(ctx context.Context, ids []string) (map[string]user.User, error) {
	found := make(map[string]user.User, len(ids))
	for _, id := range ids {
		usr, err := f.dir.FindByID(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "resolving account %s", id)
		}
		found[id] = usr
	}
	return found, nil
}

// checkAssignees requires every id to name a learner of org.
// Accounts elsewhere are reported exactly like unknown ones.
func checkAssignees(ids []string, accounts map[string]user.User, org string) error {
	for _, id := range ids {
		usr, ok := accounts[id]
		if !ok || usr.Role != user.RoleLearner || usr.OrgID != org {
			return fieldError("student_ids", "unknown learner "+id)
		}
	}
	return nil
}

func (f *Facade) checkEmailAvailable(ctx context.Context, email, ownerID string) error {
	usr, err := f.dir.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return errors.Wrap(err, "checking email")
	case usr.ID != ownerID:
		return fieldError("email", "this email is already in use")
	}
	return nil
}

func patchedEmail(patch core.Patch) string {
	var uu user.UpdateUser
	switch p := patch.(type) {
	case user.UpdateUser:
		uu = p
	case *user.UpdateUser:
		if p == nil {
			return ""
		}
		uu = *p
	default:
		return ""
	}
	if uu.Email == nil {
		return ""
	}
	return core.CleanString(*uu.Email, true /* lower */)
}

func patchedAssignees(patch core.Patch) []string {
	switch p := patch.(type) {
	case lms.AssignmentPatch:
		return p.StudentIDs
	case *lms.AssignmentPatch:
		if p != nil {
			return p.StudentIDs
		}
	}
	return nil
}

func affiliationError(field string, err error) error {
	return fieldError(field, strings.TrimSuffix(err.Error(), ": "+user.ErrInvalidPrincipal.Error()))
}

func fieldError(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}
