package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	FullName       string `gorm:"column:full_name;type:varchar(200);not null" json:"full_name"`
	Specialization string `gorm:"column:specialization;type:varchar(100)" json:"specialization,omitempty"`

	Active bool `gorm:"column:active;default:true;index" json:"active"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) IsActive() bool {
	return d.Active && d.DeletedAt == nil
}

type CreateDoctorCommand struct {
	FullName       string
	Specialization string
}
