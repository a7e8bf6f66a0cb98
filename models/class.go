package models

import (
	"time"

	"gorm.io/gorm"
)

// Class is a named deck of flashcards owned by a single user
type Class struct {
	gorm.Model
	PublicID    string `gorm:"size:100;uniqueIndex"`
	Name        string `gorm:"not null;size:100"`
	Description string `gorm:"size:500"`
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`

	Flashcards []Flashcard `gorm:"foreignKey:ClassID"`

	// Denormalized; recomputed on every card write
	CardCount     int        `gorm:"default:0"`
	LastStudiedAt *time.Time `gorm:"default:null"`
}
