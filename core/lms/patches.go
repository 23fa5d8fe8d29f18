package lms

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
)

// Patches only expose fields that are safe to change: tenant and ownership
// fields (org, author, recipient) are fixed at creation.

func wrongTarget(want core.ResourceType, r core.Resource) error {
	return errors.Errorf("cannot apply %s patch to %s", want, r.ResourceType())
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = core.CleanString(*src)
	}
}

type OrganizationPatch struct {
	Name               *string           `json:"name" validate:"omitempty,notblank"`
	Address            *string           `json:"address"`
	Plan               *SubscriptionPlan `json:"subscription_plan"`
	SubscriptionStatus *string           `json:"subscription_status" validate:"omitempty,subscription_status"`
	TrialEndsAt        *time.Time        `json:"trial_ends_at"`
	LearnersCount      *int              `json:"learners_count" validate:"omitempty,gte=0"`
	EducatorsCount     *int              `json:"educators_count" validate:"omitempty,gte=0"`
}

func (op OrganizationPatch) Apply(r core.Resource) (core.Resource, error) {
	org, ok := r.(Organization)
	if !ok {
		return nil, wrongTarget(core.TypeOrganization, r)
	}
	setString(&org.Name, op.Name)
	setString(&org.Address, op.Address)
	setString(&org.SubscriptionStatus, op.SubscriptionStatus)
	if op.Plan != nil {
		org.Plan = *op.Plan
	}
	if op.TrialEndsAt != nil {
		t := op.TrialEndsAt.UTC()
		org.TrialEndsAt = &t
	}
	if op.LearnersCount != nil {
		org.LearnersCount = *op.LearnersCount
	}
	if op.EducatorsCount != nil {
		org.EducatorsCount = *op.EducatorsCount
	}
	return org, nil
}

type SubjectPatch struct {
	Name      *string  `json:"name" validate:"omitempty,notblank"`
	Icon      *string  `json:"icon"`
	Color     *string  `json:"color" validate:"omitempty,hexcolor"`
	KeyStages []string `json:"key_stages" validate:"omitempty,dive,key_stage"`
}

func (sp SubjectPatch) Apply(r core.Resource) (core.Resource, error) {
	sub, ok := r.(Subject)
	if !ok {
		return nil, wrongTarget(core.TypeSubject, r)
	}
	setString(&sub.Name, sp.Name)
	setString(&sub.Icon, sp.Icon)
	setString(&sub.Color, sp.Color)
	if sp.KeyStages != nil {
		sub.KeyStages = append([]string(nil), sp.KeyStages...)
	}
	return sub, nil
}

type LearningUnitPatch struct {
	Title        *string `json:"title" validate:"omitempty,notblank"`
	Description  *string `json:"description"`
	SubjectID    *string `json:"subject_id"`
	KeyStage     *string `json:"key_stage" validate:"omitempty,key_stage"`
	Kind         *string `json:"content_type" validate:"omitempty,content_kind"`
	ContentURL   *string `json:"content_url" validate:"omitempty,uri"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,uri"`
}

func (lp LearningUnitPatch) Apply(r core.Resource) (core.Resource, error) {
	lu, ok := r.(LearningUnit)
	if !ok {
		return nil, wrongTarget(core.TypeLearningUnit, r)
	}
	setString(&lu.Title, lp.Title)
	setString(&lu.Description, lp.Description)
	setString(&lu.SubjectID, lp.SubjectID)
	setString(&lu.KeyStage, lp.KeyStage)
	setString(&lu.Kind, lp.Kind)
	setString(&lu.ContentURL, lp.ContentURL)
	setString(&lu.ThumbnailURL, lp.ThumbnailURL)
	return lu, nil
}

type AssignmentPatch struct {
	Title       *string    `json:"title" validate:"omitempty,notblank"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	SubjectID   *string    `json:"subject_id"`
	ClassID     *string    `json:"class_id"`
	StudentIDs  []string   `json:"student_ids" validate:"omitempty,dive,required"`
	ContentIDs  []string   `json:"content_ids" validate:"omitempty,dive,required"`
}

func (ap AssignmentPatch) Apply(r core.Resource) (core.Resource, error) {
	a, ok := r.(Assignment)
	if !ok {
		return nil, wrongTarget(core.TypeAssignment, r)
	}
	setString(&a.Title, ap.Title)
	setString(&a.Description, ap.Description)
	setString(&a.SubjectID, ap.SubjectID)
	setString(&a.ClassID, ap.ClassID)
	if ap.DueDate != nil {
		a.DueDate = ap.DueDate.UTC()
	}
	if ap.StudentIDs != nil {
		a.StudentIDs = append([]string(nil), ap.StudentIDs...)
	}
	if ap.ContentIDs != nil {
		a.ContentIDs = append([]string(nil), ap.ContentIDs...)
	}
	return a, nil
}

type BadgePatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Criteria    *string `json:"criteria"`
}

func (bp BadgePatch) Apply(r core.Resource) (core.Resource, error) {
	b, ok := r.(Badge)
	if !ok {
		return nil, wrongTarget(core.TypeBadge, r)
	}
	setString(&b.Name, bp.Name)
	setString(&b.Description, bp.Description)
	setString(&b.ImageURL, bp.ImageURL)
	setString(&b.Criteria, bp.Criteria)
	return b, nil
}

type BadgeAwardPatch struct {
	BadgeID   *string    `json:"badge_id" validate:"omitempty,notblank"`
	AwardedAt *time.Time `json:"awarded_at"`
}

func (bp BadgeAwardPatch) Apply(r core.Resource) (core.Resource, error) {
	ba, ok := r.(BadgeAward)
	if !ok {
		return nil, wrongTarget(core.TypeBadgeAward, r)
	}
	setString(&ba.BadgeID, bp.BadgeID)
	if bp.AwardedAt != nil {
		ba.AwardedAt = bp.AwardedAt.UTC()
	}
	return ba, nil
}

type ProgressPatch struct {
	Progress    *int       `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Score       *int       `json:"score" validate:"omitempty,gte=0,lte=100"`
	CompletedAt *time.Time `json:"completed_at"`
	Attempts    *int       `json:"attempts" validate:"omitempty,gte=1"`
}

func (pp ProgressPatch) Apply(r core.Resource) (core.Resource, error) {
	pr, ok := r.(ProgressRecord)
	if !ok {
		return nil, wrongTarget(core.TypeProgress, r)
	}
	if pp.Progress != nil {
		pr.Progress = *pp.Progress
	}
	if pp.Score != nil {
		score := *pp.Score
		pr.Score = &score
	}
	if pp.CompletedAt != nil {
		t := pp.CompletedAt.UTC()
		pr.CompletedAt = &t
	}
	if pp.Attempts != nil {
		pr.Attempts = *pp.Attempts
	}
	return pr, nil
}
