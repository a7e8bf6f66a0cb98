package models

import (
	"time"
)

// PerformanceRecord is one completed study session over a class. Records
// are append-only: there is no update or delete surface for them.
type PerformanceRecord struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClassID uint  `gorm:"not null;index"`
	Class   Class `gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Accuracy is a whole percentage, denominator = deck size at session start
	Accuracy       int `gorm:"not null"`
	CompletionTime int `gorm:"not null"` // whole seconds
	CorrectAnswers int `gorm:"not null"`
	TotalQuestions int `gorm:"not null"`

	// Public IDs of cards judged incorrect, at most once per session each
	CardErrors []string `gorm:"serializer:json"`

	CompletedAt time.Time `gorm:"autoCreateTime;index"`
}
