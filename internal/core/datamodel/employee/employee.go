package employee

import "time"

type Employee struct {
	ID           int64     `gorm:"primaryKey"`
	DNI          string    `gorm:"column:dni;uniqueIndex;not null"`
	Names        string    `gorm:"column:names;not null"`
	Surnames     string    `gorm:"column:surnames;not null"`
	Gender       string    `gorm:"column:gender"`
	Phone        string    `gorm:"column:phone"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	DepartmentID int64     `gorm:"column:department_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (Employee) TableName() string {
	return "employees"
}
