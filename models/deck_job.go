package models

import "time"

// DeckJob records one deck generation run for a user: the options that were
// used, where the output file lives, and the outcome counts of the run.
type DeckJob struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint          `gorm:"index;not null"`
	OutputPath    string        `gorm:"size:512;not null"`
	Lang          string        `gorm:"size:16"`
	FallbackLang  string        `gorm:"size:16"`
	TitleFrom     string        `gorm:"size:16"`
	ImageFallback bool          `gorm:"default:false"`
	Widescreen    bool          `gorm:"default:false"`
	TotalImages   int           `gorm:"not null"`
	TextSlides    int           `gorm:"not null"`
	ImageSlides   int           `gorm:"not null"`
	Skipped       int           `gorm:"not null"`
	Slides        []SlideRecord `gorm:"foreignKey:DeckJobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// SlideRecord is the per-input outcome of a deck job: which slide (if any)
// the source image produced. Skipped images keep a record so callers can see
// what was dropped.
type SlideRecord struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	DeckJobID  uint   `gorm:"index;not null"`
	SourceName string `gorm:"size:255;not null"`
	Position   int    `gorm:"not null"`         // input order, preserved in the deck
	Kind       string `gorm:"size:16;not null"` // text | image | skipped
	Title      string `gorm:"size:512"`
	Bullets    int    `gorm:"not null"` // bullet count for text slides
}
