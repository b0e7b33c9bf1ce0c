package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// currency leaves the API as a plain JSON number
	decimal.MarshalJSONWithoutQuotes = true
}

// Site is an internship site residents are assigned to.
type Site struct {
	Base
	Name        string `gorm:"size:128;not null;uniqueIndex" json:"name" validate:"required,max=128"`
	City        string `gorm:"size:64" json:"city" validate:"omitempty,max=64"`
	Address     string `gorm:"size:255" json:"address" validate:"omitempty,max=255"`
	Specialty   string `gorm:"size:128" json:"specialty" validate:"omitempty,max=128"`
	Capacity    int    `json:"capacity" validate:"gte=0,lte=1000"`
	Coordinator string `gorm:"size:128" json:"coordinator" validate:"omitempty,max=128"`
}

func (Site) TableName() string { return "sites" }

// Module groups subjects of the curriculum for one training year.
type Module struct {
	Base
	Name        string `gorm:"size:128;not null" json:"name" validate:"required,max=128"`
	Description string `gorm:"type:text" json:"description" validate:"omitempty,max=5000"`
	Year        int    `json:"year" validate:"omitempty,min=1,max=6"`
	Position    int    `json:"position" validate:"gte=0"`
}

func (Module) TableName() string { return "modules" }

type Subject struct {
	Base
	ModuleID    string `gorm:"size:36;index;not null" json:"moduleId" validate:"required"`
	Name        string `gorm:"size:128;not null" json:"name" validate:"required,max=128"`
	Description string `gorm:"type:text" json:"description" validate:"omitempty,max=5000"`
}

func (Subject) TableName() string { return "subjects" }

// File is an educational resource attached to a subject.
type File struct {
	Base
	SubjectID  string `gorm:"size:36;index" json:"subjectId"`
	Name       string `gorm:"size:255;not null" json:"name" validate:"required,max=255"`
	URL        string `gorm:"size:512;not null" json:"url" validate:"required,max=512"`
	MimeType   string `gorm:"size:128" json:"mimeType" validate:"omitempty,max=128"`
	Size       int64  `json:"size" validate:"gte=0"`
	UploadedBy string `gorm:"size:36" json:"uploadedBy"`
}

func (File) TableName() string { return "files" }

type ContributionStatus string

const (
	ContributionPaid    ContributionStatus = "paid"
	ContributionPending ContributionStatus = "pending"
)

// Contribution is one line of the shared ledger.
type Contribution struct {
	Base
	ProfileID   string             `gorm:"size:36;index;not null" json:"profileId" validate:"required"`
	Amount      decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"amount" validate:"gt=0,money"`
	Description string             `gorm:"size:255" json:"description" validate:"omitempty,max=255"`
	Date        time.Time          `json:"date" validate:"required"`
	Status      ContributionStatus `gorm:"size:16;not null;default:pending" json:"status" validate:"required,oneof=paid pending"`
}

func (Contribution) TableName() string { return "contributions" }

type LeisureEvent struct {
	Base
	Title       string          `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Description string          `gorm:"type:text" json:"description" validate:"omitempty,max=5000"`
	Date        time.Time       `json:"date" validate:"required"`
	Location    string          `gorm:"size:200" json:"location" validate:"omitempty,max=200"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2)" json:"budget" validate:"gte=0,money"`
	Status      string          `gorm:"size:16;not null;default:planned" json:"status" validate:"required,oneof=planned ongoing completed cancelled"`
}

func (LeisureEvent) TableName() string { return "leisure_events" }

// LeisureParticipant is unique per (event, profile).
type LeisureParticipant struct {
	Base
	EventID   string `gorm:"size:36;not null;uniqueIndex:idx_participant_event_profile" json:"eventId" validate:"required"`
	ProfileID string `gorm:"size:36;not null;index;uniqueIndex:idx_participant_event_profile" json:"profileId" validate:"required"`
	Status    string `gorm:"size:16;not null;default:confirmed" json:"status" validate:"required,oneof=confirmed maybe declined"`
}

func (LeisureParticipant) TableName() string { return "leisure_participants" }

type LeisureContribution struct {
	Base
	EventID   string          `gorm:"size:36;index;not null" json:"eventId" validate:"required"`
	ProfileID string          `gorm:"size:36;index;not null" json:"profileId" validate:"required"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount" validate:"gt=0,money"`
	Note      string          `gorm:"size:255" json:"note" validate:"omitempty,max=255"`
}

func (LeisureContribution) TableName() string { return "leisure_contributions" }

type Attendance struct {
	Base
	ProfileID string    `gorm:"size:36;index;not null" json:"profileId" validate:"required"`
	Date      time.Time `gorm:"index" json:"date" validate:"required"`
	Status    string    `gorm:"size:16;not null" json:"status" validate:"required,oneof=present absent excused"`
	Note      string    `gorm:"size:255" json:"note" validate:"omitempty,max=255"`
}

func (Attendance) TableName() string { return "attendance" }

// Setting is a key/value pair the portal reads at runtime.
type Setting struct {
	Base
	Key   string `gorm:"size:128;not null;uniqueIndex" json:"key" validate:"required,max=128"`
	Value string `gorm:"type:text" json:"value" validate:"max=10000"`
}

func (Setting) TableName() string { return "settings" }

// AllModels is the AutoMigrate set.
func AllModels() []any {
	return []any{
		&User{}, &Profile{}, &Message{},
		&Site{}, &Module{}, &Subject{}, &File{},
		&Contribution{}, &LeisureEvent{}, &LeisureParticipant{}, &LeisureContribution{},
		&Attendance{}, &Setting{},
	}
}
