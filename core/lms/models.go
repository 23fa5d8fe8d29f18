package lms

import (
	"time"

	"github.com/trezcool/brightspark/core"
)

// Subscription statuses
const (
	SubscriptionActive  = "active"
	SubscriptionTrial   = "trial"
	SubscriptionExpired = "expired"
)

// Content kinds
const (
	KindVideo    = "video"
	KindText     = "text"
	KindQuiz     = "quiz"
	KindActivity = "activity"
)

var (
	SubscriptionStatuses = []string{SubscriptionActive, SubscriptionTrial, SubscriptionExpired}
	ContentKinds         = []string{KindVideo, KindText, KindQuiz, KindActivity}
	KeyStages            = []string{"EYFS", "KS1", "KS2", "KS3", "KS4", "KS5"}
)

type SubscriptionPlan struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	MaxLearners int      `json:"max_learners" validate:"gte=0"`
	MaxEducator int      `json:"max_educators" validate:"gte=0"`
	Features    []string `json:"features"`
}

// Organization is a school subscribed to the platform. It is its own tenant.
type Organization struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name" validate:"required,notblank"`
	Address            string           `json:"address"`
	Plan               SubscriptionPlan `json:"subscription_plan"`
	SubscriptionStatus string           `json:"subscription_status" validate:"required,subscription_status"`
	TrialEndsAt        *time.Time       `json:"trial_ends_at,omitempty"`
	LearnersCount      int              `json:"learners_count" validate:"gte=0"`
	EducatorsCount     int              `json:"educators_count" validate:"gte=0"`
}

func (o Organization) ResourceType() core.ResourceType { return core.TypeOrganization }
func (o Organization) ResourceID() string              { return o.ID }
func (o Organization) OrgAffiliation() string          { return o.ID }

func (o Organization) Identify(id string, _ time.Time) core.Resource {
	o.ID = id
	return o
}

func (o Organization) Touch(time.Time) core.Resource { return o }

// Subject belongs to the global catalog.
type Subject struct {
	ID        string   `json:"id"`
	Name      string   `json:"name" validate:"required,notblank"`
	Icon      string   `json:"icon"`
	Color     string   `json:"color" validate:"omitempty,hexcolor"`
	KeyStages []string `json:"key_stages" validate:"dive,key_stage"`
}

func (s Subject) ResourceType() core.ResourceType { return core.TypeSubject }
func (s Subject) ResourceID() string              { return s.ID }

func (s Subject) Identify(id string, _ time.Time) core.Resource {
	s.ID = id
	return s
}

func (s Subject) Touch(time.Time) core.Resource { return s }

// LearningUnit is a piece of learning content, owned by its creator's organization.
type LearningUnit struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required,notblank"`
	Description  string    `json:"description"`
	SubjectID    string    `json:"subject_id" validate:"required"`
	KeyStage     string    `json:"key_stage" validate:"required,key_stage"`
	Kind         string    `json:"content_type" validate:"required,content_kind"`
	ContentURL   string    `json:"content_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedBy    string    `json:"created_by" validate:"required"`
	OrgID        string    `json:"org_id" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (lu LearningUnit) ResourceType() core.ResourceType { return core.TypeLearningUnit }
func (lu LearningUnit) ResourceID() string              { return lu.ID }
func (lu LearningUnit) OrgAffiliation() string          { return lu.OrgID }
func (lu LearningUnit) AuthorID() string                { return lu.CreatedBy }

func (lu LearningUnit) Identify(id string, at time.Time) core.Resource {
	lu.ID = id
	lu.CreatedAt = at.UTC()
	lu.UpdatedAt = at.UTC()
	return lu
}

func (lu LearningUnit) Touch(at time.Time) core.Resource {
	lu.UpdatedAt = at.UTC()
	return lu
}

// Assignment is work set by an educator to a set of learners.
type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	SubjectID   string    `json:"subject_id" validate:"required"`
	TeacherID   string    `json:"teacher_id" validate:"required"`
	ClassID     string    `json:"class_id,omitempty"`
	StudentIDs  []string  `json:"student_ids" validate:"dive,required"`
	ContentIDs  []string  `json:"content_ids" validate:"dive,required"`
	OrgID       string    `json:"org_id" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a Assignment) ResourceType() core.ResourceType { return core.TypeAssignment }
func (a Assignment) ResourceID() string              { return a.ID }
func (a Assignment) OrgAffiliation() string          { return a.OrgID }
func (a Assignment) AuthorID() string                { return a.TeacherID }
func (a Assignment) LearnerIDs() []string            { return a.StudentIDs }

func (a Assignment) Identify(id string, at time.Time) core.Resource {
	a.ID = id
	a.CreatedAt = at.UTC()
	return a
}

func (a Assignment) Touch(time.Time) core.Resource { return a }

// Badge belongs to the global catalog.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Criteria    string `json:"criteria"`
}

func (b Badge) ResourceType() core.ResourceType { return core.TypeBadge }
func (b Badge) ResourceID() string              { return b.ID }

func (b Badge) Identify(id string, _ time.Time) core.Resource {
	b.ID = id
	return b
}

func (b Badge) Touch(time.Time) core.Resource { return b }

// BadgeAward records a Badge given to a learner, in the learner's organization.
type BadgeAward struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	BadgeID   string    `json:"badge_id" validate:"required"`
	OrgID     string    `json:"org_id" validate:"required"`
	AwardedAt time.Time `json:"awarded_at"`
}

func (ba BadgeAward) ResourceType() core.ResourceType { return core.TypeBadgeAward }
func (ba BadgeAward) ResourceID() string              { return ba.ID }
func (ba BadgeAward) OrgAffiliation() string          { return ba.OrgID }
func (ba BadgeAward) LearnerIDs() []string            { return []string{ba.UserID} }

func (ba BadgeAward) Identify(id string, at time.Time) core.Resource {
	ba.ID = id
	if ba.AwardedAt.IsZero() {
		ba.AwardedAt = at.UTC()
	}
	return ba
}

func (ba BadgeAward) Touch(time.Time) core.Resource { return ba }

// ProgressRecord tracks a learner's progress through a LearningUnit.
type ProgressRecord struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id" validate:"required"`
	ContentID   string     `json:"content_id" validate:"required"`
	Progress    int        `json:"progress" validate:"gte=0,lte=100"`
	Score       *int       `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Attempts    int        `json:"attempts" validate:"gte=1"`
	OrgID       string     `json:"org_id" validate:"required"`
}

func (pr ProgressRecord) ResourceType() core.ResourceType { return core.TypeProgress }
func (pr ProgressRecord) ResourceID() string              { return pr.ID }
func (pr ProgressRecord) OrgAffiliation() string          { return pr.OrgID }
func (pr ProgressRecord) LearnerIDs() []string            { return []string{pr.StudentID} }

func (pr ProgressRecord) Identify(id string, _ time.Time) core.Resource {
	pr.ID = id
	if pr.Attempts == 0 {
		pr.Attempts = 1
	}
	return pr
}

func (pr ProgressRecord) Touch(time.Time) core.Resource { return pr }

// Guardianship links a guardian to a learner they are responsible for.
type Guardianship struct {
	ID         string    `json:"id"`
	GuardianID string    `json:"guardian_id" validate:"required"`
	LearnerID  string    `json:"learner_id" validate:"required,nefield=GuardianID"`
	OrgID      string    `json:"org_id" validate:"required"`
	CreatedAt  time.Time `json:"created_at"`
}

func (g Guardianship) ResourceType() core.ResourceType { return core.TypeGuardianship }
func (g Guardianship) ResourceID() string              { return g.ID }
func (g Guardianship) OrgAffiliation() string          { return g.OrgID }
func (g Guardianship) GuardianRef() string             { return g.GuardianID }
func (g Guardianship) LearnerIDs() []string            { return []string{g.LearnerID} }

var (
	_ core.Guarded       = Guardianship{}
	_ core.LearnerScoped = Guardianship{}
)

func (g Guardianship) Identify(id string, at time.Time) core.Resource {
	g.ID = id
	g.CreatedAt = at.UTC()
	return g
}

func (g Guardianship) Touch(time.Time) core.Resource { return g }
