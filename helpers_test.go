package datatables

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type TagType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Tag struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name"`
	TagTypeID    *int64     `json:"tag_type_id"`
	TagType      *TagType   `json:"tag_type"`
	ModifiedDate *time.Time `json:"modified_date"`
}

func (t Tag) EntityID() string {
	return strconv.FormatInt(t.ID, 10)
}

func qm(str string) string {
	return regexp.QuoteMeta(str)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { dbMock.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      dbMock,
		SkipInitializeWithVersion: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm DB: %v", err)
	}
	return db, mock
}

func sortHandlerRecorder(calls *[]string) SortHandler {
	return func(columnID string) string {
		*calls = append(*calls, columnID)
		return "/sort/" + columnID
	}
}

var tagTable = DataTableConfig[Tag]{
	Columns: []ColumnConfig[Tag]{
		{Key: "name", Title: "Name"},
		{Key: "tag_type", Title: "Tag Type", Sortable: Bool(false), Cell: TextCell[Tag]("tag_type.name", NoneText)},
		{Key: "modified_date", Title: "Modified Date", Cell: DateCell[Tag]("modified_date")},
	},
	EntityName: "Tag",
	BaseURL:    "/tags/tag",
}
