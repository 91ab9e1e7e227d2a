package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"` // Soft Delete

	FirstName   string     `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName    string     `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	Phone       string     `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Email       string     `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Status Status `gorm:"column:status;type:varchar(20);default:'active';index" json:"status"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) IsActive() bool {
	return p.Status == StatusActive && p.DeletedAt == nil
}

func (p *Patient) Deactivate() {
	p.Status = StatusInactive
}

type CreatePatientCommand struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Phone       string
	Email       string
	Notes       string
	CreatedBy   uuid.UUID
}

type UpdatePatientCommand struct {
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
	Phone       *string
	Email       *string
	Notes       *string
	UpdatedBy   uuid.UUID
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search   string // matches against first or last name
	Status   *Status
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
