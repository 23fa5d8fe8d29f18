package user

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/brightspark/core"
)

// ErrInvalidPrincipal is returned when a Principal would break the role/affiliation invariant.
var ErrInvalidPrincipal = errors.New("invalid principal")

type Role string

// Roles
const (
	RolePlatformAdmin Role = "platform_admin"
	RoleOrgAdmin      Role = "org_admin"
	RoleEducator      Role = "educator"
	RoleGuardian      Role = "guardian"
	RoleLearner       Role = "learner"
)

var (
	AllRoles = []Role{RolePlatformAdmin, RoleOrgAdmin, RoleEducator, RoleGuardian, RoleLearner}

	rolePriorities = map[Role]int{
		RolePlatformAdmin: 50,
		RoleOrgAdmin:      40,
		RoleEducator:      30,
		RoleGuardian:      20,
		RoleLearner:       10,
	}

	roleNames = map[Role]string{
		RolePlatformAdmin: "Platform Admin",
		RoleOrgAdmin:      "Organization Admin",
		RoleEducator:      "Educator",
		RoleGuardian:      "Guardian",
		RoleLearner:       "Learner",
	}
)

func (r Role) IsValid() bool {
	_, ok := rolePriorities[r]
	return ok
}

// Priority ranks roles: a principal may only manage accounts of a lower priority than its own.
func (r Role) Priority() int {
	return rolePriorities[r]
}

func (r Role) Name() string {
	return roleNames[r]
}

// Principal is the authenticated actor. It is immutable once built by NewPrincipal.
type Principal struct {
	id   string
	name string
	role Role
	org  string
}

// NewPrincipal builds a Principal, enforcing that every role but RolePlatformAdmin
// is affiliated to an organization and that RolePlatformAdmin is not.
func NewPrincipal(id, name string, role Role, org string) (Principal, error) {
	id = core.CleanString(id)
	org = core.CleanString(org)
	switch {
	case id == "":
		return Principal{}, errors.Wrap(ErrInvalidPrincipal, "missing identifier")
	}
	if err := CheckAffiliation(role, org); err != nil {
		return Principal{}, err
	}
	return Principal{id: id, name: core.CleanString(name), role: role, org: org}, nil
}

// CheckAffiliation reports whether an account holding role may belong to org:
// platform admins belong to none, every other role to exactly one.
func CheckAffiliation(role Role, org string) error {
	org = core.CleanString(org)
	switch {
	case !role.IsValid():
		return errors.Wrapf(ErrInvalidPrincipal, "unknown role %q", role)
	case role == RolePlatformAdmin && org != "":
		return errors.Wrap(ErrInvalidPrincipal, "platform admins have no org affiliation")
	case role != RolePlatformAdmin && org == "":
		return errors.Wrapf(ErrInvalidPrincipal, "%s requires an org affiliation", role)
	}
	return nil
}

func (p Principal) ID() string   { return p.id }
func (p Principal) Name() string { return p.name }
func (p Principal) Role() Role   { return p.role }

// OrgAffiliation returns the principal's organization; ok is false for platform admins.
func (p Principal) OrgAffiliation() (org string, ok bool) {
	return p.org, p.org != ""
}

func (p Principal) IsPlatformAdmin() bool { return p.role == RolePlatformAdmin }
func (p Principal) IsZero() bool          { return p.id == "" }

// Outranks reports whether the principal may manage accounts holding `role`.
func (p Principal) Outranks(role Role) bool {
	return p.role.Priority() > role.Priority()
}

// User is a stored account. It is the record a Principal is built from.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,notblank"`
	Email        string    `json:"email" validate:"required,email"`
	Role         Role      `json:"role" validate:"required,role"`
	OrgID        string    `json:"org_id,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

var _ core.Resource = User{}

func (u User) ResourceType() core.ResourceType { return core.TypeUser }
func (u User) ResourceID() string              { return u.ID }
func (u User) OrgAffiliation() string          { return u.OrgID }
func (u User) MemberRole() Role                { return u.Role }

func (u User) Identify(id string, at time.Time) core.Resource {
	u.ID = id
	u.CreatedAt = at.UTC()
	u.UpdatedAt = at.UTC()
	return u
}

func (u User) Touch(at time.Time) core.Resource {
	u.UpdatedAt = at.UTC()
	return u
}

// Principal converts the account into the Principal acting on its behalf.
func (u User) Principal() (Principal, error) {
	return NewPrincipal(u.ID, u.Name, u.Role, u.OrgID)
}

// Secret returns the password hash, for stores persisting it apart from the record.
func (u User) Secret() []byte { return u.PasswordHash }

func (u User) WithSecret(secret []byte) core.Resource {
	u.PasswordHash = secret
	return u
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.PasswordHash = hash
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"required,role"`
	OrgID           string `json:"org_id"`
	Avatar          string `json:"avatar" validate:"omitempty,uri"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Clean normalizes user input before validation.
func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.OrgID = core.CleanString(nu.OrgID)
}

// User builds the account described by nu, hashing its password.
func (nu NewUser) User() (User, error) {
	usr := User{
		Name:   nu.Name,
		Email:  nu.Email,
		Role:   nu.Role,
		OrgID:  nu.OrgID,
		Avatar: nu.Avatar,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return usr, nil
}

// UpdateUser defines what information may be provided to modify an existing User.
// Organization affiliation cannot be changed.
type UpdateUser struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Role            *Role   `json:"role"`
	Avatar          *string `json:"avatar"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

var _ core.Patch = UpdateUser{}

func (uu UpdateUser) Apply(r core.Resource) (core.Resource, error) {
	usr, ok := r.(User)
	if !ok {
		return nil, errors.Errorf("cannot apply user update to %s", r.ResourceType())
	}
	if uu.Name != nil {
		usr.Name = core.CleanString(*uu.Name)
	}
	if uu.Email != nil {
		usr.Email = core.CleanString(*uu.Email, true /* lower */)
	}
	if uu.Role != nil {
		usr.Role = *uu.Role
	}
	if uu.Avatar != nil {
		usr.Avatar = core.CleanString(*uu.Avatar)
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return nil, err
		}
	}
	return usr, nil
}
