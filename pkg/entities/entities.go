// Package entities defines the question bank records shown in the admin
// console and their table configurations.
package entities

import (
	"strconv"
	"time"

	datatables "github.com/ZihxS/gorm-admin-datatables"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// TagType groups tags, e.g. "Topic" or "Difficulty".
type TagType struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (t TagType) EntityID() string { return formatID(t.ID) }

// Tag labels forms and questions. Its type is optional.
type Tag struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	TagTypeID    *int64     `json:"tag_type_id"`
	TagType      *TagType   `json:"tag_type" gorm:"foreignKey:TagTypeID"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (t Tag) EntityID() string { return formatID(t.ID) }

// Label returns the display form of the tag used by FormatTags.
func (t Tag) Label() datatables.TagLabel {
	label := datatables.TagLabel{Name: t.Name}
	if t.TagType != nil {
		label.TagType = &datatables.NamedRef{ID: t.TagType.ID, Name: t.TagType.Name}
	}
	return label
}

// Labels converts tags to their display form.
func Labels(tags []Tag) []datatables.TagLabel {
	labels := make([]datatables.TagLabel, 0, len(tags))
	for _, tag := range tags {
		labels = append(labels, tag.Label())
	}
	return labels
}

// Form is a questionnaire made of questions.
type Form struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	IsActive     bool       `json:"is_active"`
	Tags         []Tag      `json:"tags" gorm:"many2many:form_tags"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (f Form) EntityID() string { return formatID(f.ID) }

// Question is a question of a form. Text holds user authored HTML.
type Question struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Text         string     `json:"text"`
	QuestionType string     `json:"question_type"`
	FormID       *int64     `json:"form_id"`
	Form         *Form      `json:"form" gorm:"foreignKey:FormID"`
	Tags         []Tag      `json:"tags" gorm:"many2many:question_tags"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (q Question) EntityID() string { return formatID(q.ID) }

// State is the state a certificate was issued in.
type State struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// District is a district of a State.
type District struct {
	ID      int64  `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	StateID int64  `json:"state_id"`
}

// Certificate is an issued certificate. State and district are optional.
type Certificate struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	StateID      *int64     `json:"state_id"`
	State        *State     `json:"state" gorm:"foreignKey:StateID"`
	DistrictID   *int64     `json:"district_id"`
	District     *District  `json:"district" gorm:"foreignKey:DistrictID"`
	IssuedDate   *time.Time `json:"issued_date"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (c Certificate) EntityID() string { return formatID(c.ID) }
