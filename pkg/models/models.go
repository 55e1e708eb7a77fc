package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SingletonNumber is the value every saved record carries in its number
// column. Nothing increments it.
const SingletonNumber = 1

const MaxPages = 10000

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:150;not null;uniqueIndex"`
	CreatedAt time.Time
}

type Author struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"size:255;not null;uniqueIndex"`
	Number    int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Author) BeforeSave(tx *gorm.DB) error {
	a.FullName = strings.ToLower(a.FullName)
	a.Number = SingletonNumber
	return nil
}

func (a Author) String() string {
	return a.FullName
}

type Book struct {
	ID          uint     `gorm:"primaryKey"`
	UserID      uint     `gorm:"not null;index"`
	User        User     `gorm:"constraint:OnDelete:CASCADE"`
	Title       string   `gorm:"size:255;not null;uniqueIndex"`
	Authors     []Author `gorm:"many2many:book_authors;constraint:OnDelete:CASCADE"`
	Description *string  `gorm:"type:text"`
	File        string   `gorm:"size:512"`
	TotalPages  int      `gorm:"not null;check:total_pages > 0"`
	Number      int      `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	averageRating    *float64
	averageRatingSet bool
	reviewCount      *int64
	reviewCountSet   bool
}

func (b *Book) BeforeSave(tx *gorm.DB) error {
	b.Number = SingletonNumber
	return nil
}

func (b Book) String() string {
	return b.Title
}

// SetAverageRating pins the average rating so readers skip the aggregate
// query. A nil value means the book has no reviews.
func (b *Book) SetAverageRating(v *float64) {
	b.averageRating = v
	b.averageRatingSet = true
}

// AverageRatingOverride reports the pinned average rating, if any.
func (b *Book) AverageRatingOverride() (*float64, bool) {
	return b.averageRating, b.averageRatingSet
}

// SetReviewCount pins the review count the same way SetAverageRating does.
func (b *Book) SetReviewCount(v *int64) {
	b.reviewCount = v
	b.reviewCountSet = true
}

func (b *Book) ReviewCountOverride() (*int64, bool) {
	return b.reviewCount, b.reviewCountSet
}

// AuthorIDs returns the ids of the loaded authors in load order.
func (b Book) AuthorIDs() []uint {
	ids := make([]uint, 0, len(b.Authors))
	for _, a := range b.Authors {
		ids = append(ids, a.ID)
	}
	return ids
}

type Importance int

const (
	ImportanceLow Importance = iota + 1
	ImportanceMedium
	ImportanceHigh
)

func (i Importance) Valid() bool {
	return i >= ImportanceLow && i <= ImportanceHigh
}

func (i Importance) Label() string {
	return fmt.Sprintf("%d/5", int(i))
}

type UserBook struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"not null;index"`
	User       User       `gorm:"constraint:OnDelete:CASCADE"`
	BookID     uint       `gorm:"not null;index"`
	Book       Book       `gorm:"constraint:OnDelete:CASCADE"`
	Importance Importance `gorm:"not null;check:importance >= 1 AND importance <= 3"`
	PagesRead  int        `gorm:"not null;default:0"`
	Number     int        `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ub *UserBook) BeforeSave(tx *gorm.DB) error {
	ub.Number = SingletonNumber
	return nil
}

// ReadingProgress is the share of the loaded book already read, as a
// percentage rounded to two decimals.
func (ub UserBook) ReadingProgress() float64 {
	total := ub.Book.TotalPages
	if total == 0 {
		return 0
	}
	return math.Round(float64(ub.PagesRead)/float64(total)*100*100) / 100
}

func (ub UserBook) String() string {
	return fmt.Sprintf("book %q of user %s", ub.Book.Title, ub.User.Username)
}

// Ratings lists the accepted review ratings.
var Ratings = []float64{1.0, 2.0, 3.0, 4.0, 5.0}

func ValidRating(r float64) bool {
	for _, allowed := range Ratings {
		if r == allowed {
			return true
		}
	}
	return false
}

type Review struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	BookID    uint      `gorm:"not null;index"`
	Book      Book      `gorm:"constraint:OnDelete:CASCADE"`
	Comment   string    `gorm:"type:text;not null"`
	Rating    float64   `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Number    int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"<-:create"`
}

func (r *Review) BeforeSave(tx *gorm.DB) error {
	r.Number = SingletonNumber
	return nil
}

func (r Review) String() string {
	return r.Comment
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Author{}, &Book{}, &UserBook{}, &Review{}}
}
