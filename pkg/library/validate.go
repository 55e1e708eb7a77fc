package library

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"bookshelf/pkg/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type AuthorInput struct {
	FullName string `json:"full_name" validate:"required,notblank,min=3,max=255"`
}

type BookInput struct {
	User        uint    `json:"user" validate:"required,min=1"`
	Title       string  `json:"title" validate:"required,notblank,min=2,max=255"`
	Authors     []uint  `json:"authors" validate:"required,min=1,dive,min=1"`
	Description *string `json:"description"`
	File        string  `json:"file" validate:"omitempty,pdf"`
	TotalPages  int     `json:"total_pages" validate:"required,min=1,max=10000"`
}

type UserBookInput struct {
	User       uint `json:"user" validate:"required,min=1"`
	Book       uint `json:"book" validate:"required,min=1"`
	Importance int  `json:"importance" validate:"required,importance"`
	PagesRead  int  `json:"pages_read" validate:"required,min=1,max=10000"`
}

type ReviewInput struct {
	User    uint    `json:"user" validate:"required,min=1"`
	Book    uint    `json:"book" validate:"required,min=1"`
	Comment string  `json:"comment" validate:"required,notblank"`
	Rating  float64 `json:"rating" validate:"required,rating"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("pdf", func(fl validator.FieldLevel) bool {
		return strings.EqualFold(path.Ext(fl.Field().String()), ".pdf")
	}))
	must(v.RegisterValidation("importance", func(fl validator.FieldLevel) bool {
		return models.Importance(fl.Field().Int()).Valid()
	}))
	must(v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		return models.ValidRating(fl.Field().Float())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// check runs the field rules declared on an input struct.
func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	out := &Error{Kind: KindValidation}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "this list may not be empty"
		}
		return "this field is required"
	case "notblank":
		return "this field may not be blank"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		case reflect.Slice:
			return "this list may not be empty"
		default:
			return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
		}
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "pdf":
		return "file extension is not allowed, allowed extensions are: pdf"
	case "importance", "rating":
		return fmt.Sprintf("%v is not a valid choice", fe.Value())
	default:
		return "invalid value"
	}
}

func requireUser(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if count == 0 {
		return missingReference("user", MsgUserNotFound)
	}
	return nil
}

func requireBook(tx *gorm.DB, id uint) (models.Book, error) {
	var book models.Book
	if err := tx.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book, missingReference("book", MsgBookNotFound)
		}
		return book, fmt.Errorf("look up book: %w", err)
	}
	return book, nil
}

// loadAuthors fetches every referenced author or rejects the whole list.
// A repeated id matches one row only, so it is rejected like a missing one.
func loadAuthors(tx *gorm.DB, ids []uint) ([]models.Author, error) {
	var authors []models.Author
	if err := tx.Where("id IN ?", ids).Order("id").Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("look up authors: %w", err)
	}
	if len(authors) != len(ids) {
		return nil, missingReference("authors", MsgAuthorNotFound)
	}
	return authors, nil
}

// ensureUniqueAuthor rejects a full name already held by another author.
// excludeID is the author being updated, zero on create.
func ensureUniqueAuthor(tx *gorm.DB, fullName string, excludeID uint) error {
	q := tx.Model(&models.Author{}).Where("full_name = ?", strings.ToLower(fullName))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check author name: %w", err)
	}
	if count > 0 {
		return conflict("full_name", MsgFullNameNotUnique)
	}
	return nil
}

func ensureUniqueTitle(tx *gorm.DB, title string, excludeID uint) error {
	q := tx.Model(&models.Book{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check book title: %w", err)
	}
	if count > 0 {
		return conflict("title", MsgTitleNotUnique)
	}
	return nil
}
