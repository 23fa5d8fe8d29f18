// Package fixtures holds the demo dataset seeded into fresh stores.
package fixtures

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/user"
)

// Password is the password of every demo account.
const Password = "password"

// Demo account ids
const (
	PlatformAdminID = "1"
	OrgAdminID      = "2"
	EducatorSmithID = "3"
	LearnerJonesID  = "4"
	GuardianBrownID = "5"
	EducatorJohnsID = "6"
	LearnerWillsID  = "7"
)

var (
	pwdHashOnce sync.Once
	pwdHash     []byte
)

func passwordHash() []byte {
	pwdHashOnce.Do(func() {
		var err error
		if pwdHash, err = bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost); err != nil {
			panic(err)
		}
	})
	return pwdHash
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func intPtr(i int) *int { return &i }

func Organizations() []lms.Organization {
	return []lms.Organization{
		{
			ID:      "1",
			Name:    "Oakridge Primary School",
			Address: "123 School Lane, London",
			Plan: lms.SubscriptionPlan{
				ID:          "basic",
				Name:        "Basic Plan",
				Price:       99,
				MaxLearners: 200,
				MaxEducator: 15,
				Features:    []string{"Core Subjects", "Basic Analytics", "Email Support"},
			},
			SubscriptionStatus: lms.SubscriptionActive,
			LearnersCount:      150,
			EducatorsCount:     12,
		},
		{
			ID:      "2",
			Name:    "Meadowbrook Academy",
			Address: "456 Learning Drive, Manchester",
			Plan: lms.SubscriptionPlan{
				ID:          "premium",
				Name:        "Premium Plan",
				Price:       199,
				MaxLearners: 500,
				MaxEducator: 30,
				Features:    []string{"All Subjects", "Advanced Analytics", "Priority Support", "Custom Content"},
			},
			SubscriptionStatus: lms.SubscriptionTrial,
			TrialEndsAt:        dayPtr("2025-06-15"),
			LearnersCount:      320,
			EducatorsCount:     24,
		},
	}
}

func Subjects() []lms.Subject {
	ks := func() []string { return []string{"KS1", "KS2"} }
	return []lms.Subject{
		{ID: "1", Name: "Mathematics", Icon: "calculator", Color: "#4CAF50", KeyStages: ks()},
		{ID: "2", Name: "English", Icon: "book", Color: "#2196F3", KeyStages: ks()},
		{ID: "3", Name: "Science", Icon: "flask", Color: "#9C27B0", KeyStages: ks()},
		{ID: "4", Name: "Geography", Icon: "globe", Color: "#FF9800", KeyStages: ks()},
		{ID: "5", Name: "History", Icon: "clock", Color: "#795548", KeyStages: ks()},
	}
}

func Users() []user.User {
	created := day("2025-01-06")
	usr := func(id, name, email string, role user.Role, org, avatar string) user.User {
		return user.User{
			ID:           id,
			Name:         name,
			Email:        email,
			Role:         role,
			OrgID:        org,
			Avatar:       avatar,
			PasswordHash: passwordHash(),
			CreatedAt:    created,
			UpdatedAt:    created,
		}
	}
	return []user.User{
		usr(PlatformAdminID, "Super Admin", "admin@brightspark.com", user.RolePlatformAdmin, "", "/assets/avatars/super-admin.png"),
		usr(OrgAdminID, "School Admin", "school@brightspark.com", user.RoleOrgAdmin, "1", "/assets/avatars/school-admin.png"),
		usr(EducatorSmithID, "Teacher Smith", "teacher@brightspark.com", user.RoleEducator, "1", "/assets/avatars/teacher.png"),
		usr(LearnerJonesID, "Student Jones", "student@brightspark.com", user.RoleLearner, "1", "/assets/avatars/student.png"),
		usr(GuardianBrownID, "Parent Brown", "parent@brightspark.com", user.RoleGuardian, "1", "/assets/avatars/parent.png"),
		usr(EducatorJohnsID, "Teacher Johnson", "johnson@brightspark.com", user.RoleEducator, "1", "/assets/avatars/teacher-2.png"),
		usr(LearnerWillsID, "Student Williams", "williams@brightspark.com", user.RoleLearner, "1", "/assets/avatars/student-2.png"),
	}
}

// Principals returns the Principal of every demo account, keyed by id.
func Principals() map[string]user.Principal {
	principals := make(map[string]user.Principal)
	for _, usr := range Users() {
		p, err := usr.Principal()
		if err != nil {
			panic(err)
		}
		principals[usr.ID] = p
	}
	return principals
}

func LearningUnits() []lms.LearningUnit {
	return []lms.LearningUnit{
		{
			ID: "1", Title: "Basic Addition for Year 1", Description: "Learn to add numbers up to 20",
			SubjectID: "1", KeyStage: "KS1", Kind: lms.KindVideo,
			ContentURL: "/content/math/addition.mp4", ThumbnailURL: "/thumbnails/math/addition.jpg",
			CreatedBy: EducatorSmithID, OrgID: "1", CreatedAt: day("2025-04-01"), UpdatedAt: day("2025-04-01"),
		},
		{
			ID: "2", Title: "Phonics: Short Vowel Sounds", Description: "Learn the short vowel sounds with fun exercises",
			SubjectID: "2", KeyStage: "KS1", Kind: lms.KindActivity, ThumbnailURL: "/thumbnails/english/phonics.jpg",
			CreatedBy: EducatorSmithID, OrgID: "1", CreatedAt: day("2025-04-02"), UpdatedAt: day("2025-04-03"),
		},
		{
			ID: "3", Title: "Plants and Growth", Description: "Explore how plants grow and what they need",
			SubjectID: "3", KeyStage: "KS1", Kind: lms.KindQuiz, ThumbnailURL: "/thumbnails/science/plants.jpg",
			CreatedBy: EducatorJohnsID, OrgID: "1", CreatedAt: day("2025-04-05"), UpdatedAt: day("2025-04-05"),
		},
		{
			ID: "4", Title: "Multiplication Tables: 2, 5 and 10", Description: "Practice multiplication tables with interactive games",
			SubjectID: "1", KeyStage: "KS2", Kind: lms.KindActivity, ThumbnailURL: "/thumbnails/math/multiplication.jpg",
			CreatedBy: EducatorSmithID, OrgID: "1", CreatedAt: day("2025-04-10"), UpdatedAt: day("2025-04-10"),
		},
	}
}

func Assignments() []lms.Assignment {
	return []lms.Assignment{
		{
			ID: "1", Title: "Weekly Math Quiz", Description: "Complete the addition and subtraction practice",
			DueDate: day("2025-05-15"), SubjectID: "1", TeacherID: EducatorSmithID,
			StudentIDs: []string{LearnerJonesID, LearnerWillsID}, ContentIDs: []string{"1"},
			OrgID: "1", CreatedAt: day("2025-05-01"),
		},
		{
			ID: "2", Title: "Reading Comprehension", Description: "Read the short story and answer the questions",
			DueDate: day("2025-05-18"), SubjectID: "2", TeacherID: EducatorJohnsID,
			StudentIDs: []string{LearnerJonesID}, ContentIDs: []string{"2"},
			OrgID: "1", CreatedAt: day("2025-05-03"),
		},
	}
}

func Badges() []lms.Badge {
	return []lms.Badge{
		{ID: "1", Name: "Math Star", Description: "Awarded for excellent performance in mathematics", ImageURL: "/badges/math-star.png", Criteria: "Score 90% or higher on 3 math assessments"},
		{ID: "2", Name: "Reading Champion", Description: "Awarded for consistent reading practice", ImageURL: "/badges/reading-champion.png", Criteria: "Complete 10 reading assignments"},
		{ID: "3", Name: "Science Explorer", Description: "Awarded for curiosity and excellence in science", ImageURL: "/badges/science-explorer.png", Criteria: "Complete all science activities in a unit"},
	}
}

func BadgeAwards() []lms.BadgeAward {
	return []lms.BadgeAward{
		{ID: "1", UserID: LearnerJonesID, BadgeID: "1", OrgID: "1", AwardedAt: day("2025-04-15")},
		{ID: "2", UserID: LearnerJonesID, BadgeID: "2", OrgID: "1", AwardedAt: day("2025-04-20")},
	}
}

func ProgressRecords() []lms.ProgressRecord {
	return []lms.ProgressRecord{
		{ID: "1", StudentID: LearnerJonesID, ContentID: "1", Progress: 100, Score: intPtr(85), CompletedAt: dayPtr("2025-04-10"), Attempts: 1, OrgID: "1"},
		{ID: "2", StudentID: LearnerJonesID, ContentID: "2", Progress: 100, Score: intPtr(92), CompletedAt: dayPtr("2025-04-12"), Attempts: 1, OrgID: "1"},
		{ID: "3", StudentID: LearnerJonesID, ContentID: "3", Progress: 75, Attempts: 1, OrgID: "1"},
		{ID: "4", StudentID: LearnerWillsID, ContentID: "1", Progress: 100, Score: intPtr(78), CompletedAt: dayPtr("2025-04-11"), Attempts: 2, OrgID: "1"},
	}
}

func Guardianships() []lms.Guardianship {
	return []lms.Guardianship{
		{ID: "1", GuardianID: GuardianBrownID, LearnerID: LearnerJonesID, OrgID: "1", CreatedAt: day("2025-01-06")},
	}
}

// All returns every demo record, in an order that satisfies references.
func All() []core.Resource {
	var all []core.Resource
	for _, r := range Organizations() {
		all = append(all, r)
	}
	for _, r := range Subjects() {
		all = append(all, r)
	}
	for _, r := range Users() {
		all = append(all, r)
	}
	for _, r := range LearningUnits() {
		all = append(all, r)
	}
	for _, r := range Assignments() {
		all = append(all, r)
	}
	for _, r := range Badges() {
		all = append(all, r)
	}
	for _, r := range BadgeAwards() {
		all = append(all, r)
	}
	for _, r := range ProgressRecords() {
		all = append(all, r)
	}
	for _, r := range Guardianships() {
		all = append(all, r)
	}
	return all
}
