package data

import (
	"context"
	"net/mail"
	"time"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
)

const assignmentNoticeTemplate = "assignment_notice"

type assignmentNotice struct {
	RecipientName string
	Title         string
	Description   string
	DueDate       time.Time
}

// notifyAssignees emails every assignee of a newly created assignment.
// Failures are logged, the assignment stays created.
func (f *Facade) notifyAssignees(ctx context.Context, a lms.Assignment) {
	if f.mailer == nil {
		return
	}
	var msgs []*core.EmailMessage
	for _, learnerID := range a.StudentIDs {
		usr, err := f.dir.FindByID(ctx, learnerID)
		if err != nil {
			f.log.Warn("assignment notice: unknown assignee", map[string]interface{}{"assignment": a.ID, "learner": learnerID})
			continue
		}
		if usr.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "New assignment: " + a.Title,
			TemplateName: assignmentNoticeTemplate,
			TemplateData: assignmentNotice{
				RecipientName: usr.Name,
				Title:         a.Title,
				Description:   a.Description,
				DueDate:       a.DueDate,
			},
		})
	}
	if len(msgs) > 0 {
		f.mailer.SendMessages(msgs...)
	}
}
