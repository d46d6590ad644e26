package entities

import (
	"html/template"
	"strings"

	datatables "github.com/ZihxS/gorm-admin-datatables"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Collection and single entity routes.
const (
	TagsPath         = "/tags"
	TagPath          = "/tags/tag"
	TagTypesPath     = "/tag-types"
	TagTypePath      = "/tag-types/tag-type"
	FormsPath        = "/forms"
	FormPath         = "/forms/form"
	QuestionsPath    = "/questions"
	QuestionPath     = "/questions/question"
	CertificatesPath = "/certificates"
	CertificatePath  = "/certificates/certificate"
)

// Label title-cases a snake_case value, e.g. "multiple_choice" becomes
// "Multiple Choice".
func Label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// labelCell renders the string at key with Label.
func labelCell[T datatables.Entity](key string) datatables.CellFunc[T] {
	return func(row T) template.HTML {
		s, _ := datatables.FieldValue(row, key).(string)
		return template.HTML(template.HTMLEscapeString(Label(s)))
	}
}

// tagsCell renders the tags of a row with FormatTags.
func tagsCell[T datatables.Entity](tags func(row T) []Tag) datatables.CellFunc[T] {
	return func(row T) template.HTML {
		return template.HTML(template.HTMLEscapeString(datatables.FormatTags(Labels(tags(row)))))
	}
}

// TagTable lists tags with their type and modification date.
var TagTable = datatables.DataTableConfig[Tag]{
	Columns: []datatables.ColumnConfig[Tag]{
		{Key: "name", Title: "Name"},
		{Key: "tag_type", Title: "Tag Type", Sortable: datatables.Bool(false), Cell: datatables.TextCell[Tag]("tag_type.name", datatables.NoneText)},
		{Key: "modified_date", Title: "Modified Date", Cell: datatables.DateCell[Tag]("modified_date")},
	},
	EntityName: "Tag",
	BaseURL:    TagPath,
}

// TagColumns builds the tag table columns for a sort state.
var TagColumns = datatables.NewColumns(TagTable)

// TagTypeTable lists tag types.
var TagTypeTable = datatables.DataTableConfig[TagType]{
	Columns: []datatables.ColumnConfig[TagType]{
		{Key: "name", Title: "Name"},
		{Key: "modified_date", Title: "Modified Date", Cell: datatables.DateCell[TagType]("modified_date")},
	},
	EntityName: "Tag Type",
	BaseURL:    TagTypePath,
}

// FormTable lists forms with their tags.
var FormTable = datatables.DataTableConfig[Form]{
	Columns: []datatables.ColumnConfig[Form]{
		{Key: "name", Title: "Name"},
		{Key: "description", Title: "Description", Sortable: datatables.Bool(false)},
		{Key: "is_active", Title: "Active", Cell: datatables.BoolCell[Form]("is_active")},
		{Key: "tags", Title: "Tags", Sortable: datatables.Bool(false), Cell: tagsCell(func(f Form) []Tag { return f.Tags })},
		{Key: "modified_date", Title: "Modified Date", Cell: datatables.DateCell[Form]("modified_date")},
	},
	EntityName: "Form",
	BaseURL:    FormPath,
}

// QuestionTable lists questions with their form and tags.
var QuestionTable = datatables.DataTableConfig[Question]{
	Columns: []datatables.ColumnConfig[Question]{
		{Key: "text", Title: "Question", Sortable: datatables.Bool(false), Cell: datatables.RichTextCell[Question]("text")},
		{Key: "question_type", Title: "Type", Cell: labelCell[Question]("question_type")},
		{Key: "form", Title: "Form", Sortable: datatables.Bool(false), Cell: datatables.TextCell[Question]("form.name", datatables.NoneText)},
		{Key: "tags", Title: "Tags", Sortable: datatables.Bool(false), Cell: tagsCell(func(q Question) []Tag { return q.Tags })},
		{Key: "modified_date", Title: "Modified Date", Cell: datatables.DateCell[Question]("modified_date")},
	},
	EntityName: "Question",
	BaseURL:    QuestionPath,
}

// CertificateTable lists certificates with their state and district.
var CertificateTable = datatables.DataTableConfig[Certificate]{
	Columns: []datatables.ColumnConfig[Certificate]{
		{Key: "name", Title: "Name"},
		{Key: "state", Title: "State", Sortable: datatables.Bool(false), Cell: datatables.TextCell[Certificate]("state.name", datatables.NoneText)},
		{Key: "district", Title: "District", Sortable: datatables.Bool(false), Cell: datatables.TextCell[Certificate]("district.name", datatables.NoneText)},
		{Key: "issued_date", Title: "Issued", Cell: datatables.DateCell[Certificate]("issued_date")},
		{Key: "modified_date", Title: "Modified Date", Cell: datatables.DateCell[Certificate]("modified_date")},
	},
	EntityName: "Certificate",
	BaseURL:    CertificatePath,
}
