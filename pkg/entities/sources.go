package entities

import (
	datatables "github.com/ZihxS/gorm-admin-datatables"
	"github.com/ZihxS/gorm-admin-datatables/pkg/backend"
	"gorm.io/gorm"
)

// Stores holds one store per entity kind.
type Stores struct {
	Tags         datatables.Store[Tag]
	TagTypes     datatables.Store[TagType]
	Forms        datatables.Store[Form]
	Questions    datatables.Store[Question]
	Certificates datatables.Store[Certificate]
}

// DatabaseStores reads every entity directly from the database.
func DatabaseStores(db *gorm.DB) Stores {
	return Stores{
		Tags: datatables.NewSourceFor(db, TagTable).
			Search("name").
			Filterable("tag_type_id").
			With("TagType").
			DefaultSort("modified_date", datatables.SortDesc),
		TagTypes: datatables.NewSourceFor(db, TagTypeTable).
			Search("name").
			DefaultSort("name", datatables.SortAsc),
		Forms: datatables.NewSourceFor(db, FormTable).
			Search("name", "description").
			Filterable("is_active").
			With("Tags", "Tags.TagType").
			DefaultSort("modified_date", datatables.SortDesc),
		Questions: datatables.NewSourceFor(db, QuestionTable).
			Search("text").
			Filterable("question_type", "form_id").
			With("Form", "Tags", "Tags.TagType").
			DefaultSort("modified_date", datatables.SortDesc),
		Certificates: datatables.NewSourceFor(db, CertificateTable).
			Search("name").
			Filterable("state_id", "district_id").
			With("State", "District").
			DefaultSort("issued_date", datatables.SortDesc),
	}
}

// BackendStores reads every entity from the REST backend.
func BackendStores(client *backend.Client) Stores {
	return Stores{
		Tags:         backend.NewSource[Tag](client, TagsPath),
		TagTypes:     backend.NewSource[TagType](client, TagTypesPath),
		Forms:        backend.NewSource[Form](client, FormsPath),
		Questions:    backend.NewSource[Question](client, QuestionsPath),
		Certificates: backend.NewSource[Certificate](client, CertificatesPath),
	}
}
