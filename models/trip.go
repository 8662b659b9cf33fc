package models

import (
	"time"

	"gorm.io/datatypes"
)

type Trip struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string  `json:"title" gorm:"type:varchar(255)"`
	TourType    string  `json:"tourType" gorm:"column:tour_type;type:varchar(100)"`
	Includes    string  `json:"includes" gorm:"type:text"`
	Notes       *string `json:"notes" gorm:"type:text"`
	Description *string `json:"description" gorm:"type:text"`

	// places and images are stored as JSON arrays
	Places datatypes.JSONSlice[string] `json:"places"`
	Images datatypes.JSONSlice[string] `json:"images"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}
