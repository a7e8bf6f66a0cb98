package models

import "gorm.io/gorm"

// Flashcard represents an individual flashcard
type Flashcard struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	Front    string `gorm:"not null;size:1000"`
	Back     string `gorm:"not null;size:2000"`

	ClassID uint  `gorm:"not null;index"`
	Class   Class `gorm:"foreignKey:ClassID" json:"-"`
}
