package data

import (
	"context"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/user"
)

func listAs[T core.Resource](ctx context.Context, f *Facade, p user.Principal, rt core.ResourceType, filters ...Filter) ([]T, error) {
	records, err := f.List(ctx, p, rt, filters...)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0, len(records))
	for _, r := range records {
		if v, ok := r.(T); ok {
			result = append(result, v)
		}
	}
	return result, nil
}

func (f *Facade) Organizations(ctx context.Context, p user.Principal) ([]lms.Organization, error) {
	return listAs[lms.Organization](ctx, f, p, core.TypeOrganization)
}

func (f *Facade) Subjects(ctx context.Context, p user.Principal) ([]lms.Subject, error) {
	return listAs[lms.Subject](ctx, f, p, core.TypeSubject)
}

func (f *Facade) LearningUnits(ctx context.Context, p user.Principal, filters ...Filter) ([]lms.LearningUnit, error) {
	return listAs[lms.LearningUnit](ctx, f, p, core.TypeLearningUnit, filters...)
}

func (f *Facade) Assignments(ctx context.Context, p user.Principal, filters ...Filter) ([]lms.Assignment, error) {
	return listAs[lms.Assignment](ctx, f, p, core.TypeAssignment, filters...)
}

func (f *Facade) Badges(ctx context.Context, p user.Principal) ([]lms.Badge, error) {
	return listAs[lms.Badge](ctx, f, p, core.TypeBadge)
}

func (f *Facade) BadgeAwards(ctx context.Context, p user.Principal) ([]lms.BadgeAward, error) {
	return listAs[lms.BadgeAward](ctx, f, p, core.TypeBadgeAward)
}

func (f *Facade) ProgressRecords(ctx context.Context, p user.Principal) ([]lms.ProgressRecord, error) {
	return listAs[lms.ProgressRecord](ctx, f, p, core.TypeProgress)
}

func (f *Facade) Users(ctx context.Context, p user.Principal, filters ...Filter) ([]user.User, error) {
	return listAs[user.User](ctx, f, p, core.TypeUser, filters...)
}

func (f *Facade) Guardianships(ctx context.Context, p user.Principal) ([]lms.Guardianship, error) {
	return listAs[lms.Guardianship](ctx, f, p, core.TypeGuardianship)
}
