package datatables

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
)

// DateLayout is the layout used by FormatDate.
const DateLayout = "2006-01-02"

var ugcPolicy = bluemonday.UGCPolicy()

// FieldValue looks up key on row and returns the field value, or nil when
// any step of the path is missing or nil. Keys match JSON field names first
// and Go field names second; dotted keys walk nested structs and maps.
func FieldValue(row any, key string) any {
	if key == "" {
		return nil
	}

	v := reflect.ValueOf(row)
	for _, part := range strings.Split(key, ".") {
		v = indirect(v)
		if !v.IsValid() {
			return nil
		}
		switch v.Kind() {
		case reflect.Struct:
			v = structField(v, part)
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil
			}
			v = v.MapIndex(reflect.ValueOf(part).Convert(v.Type().Key()))
		default:
			return nil
		}
	}

	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// indirect follows pointers and interfaces, returning the zero Value on nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// structField finds the field named name on v, looking through embedded
// structs.
func structField(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if jsonName(f) == name {
			return v.Field(i)
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return v.Field(i)
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		embedded := indirect(v.Field(i))
		if embedded.IsValid() && embedded.Kind() == reflect.Struct {
			if found := structField(embedded, name); found.IsValid() {
				return found
			}
		}
	}
	return reflect.Value{}
}

func jsonName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// CellText converts a field value into display text. Nil values become "".
func CellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return FormatDate(&v)
	case bool:
		return FormatBool(v)
	case []TagLabel:
		return FormatTags(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// FormatDate formats t with DateLayout. Nil and zero times become "".
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatBool returns "Yes" or "No".
func FormatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Or returns s, or fallback when s is empty.
func Or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// NamedRef is a nested relation that only carries an id and a name.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TagLabel is the part of a tag needed to display it.
type TagLabel struct {
	Name    string    `json:"name"`
	TagType *NamedRef `json:"tag_type,omitempty"`
}

// FormatTags joins tags into one display string: "name - type" for tags
// with a type, "name" otherwise, separated by commas.
func FormatTags(tags []TagLabel) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.TagType != nil && tag.TagType.Name != "" {
			parts = append(parts, tag.Name+" - "+tag.TagType.Name)
			continue
		}
		parts = append(parts, tag.Name)
	}
	return strings.Join(parts, ", ")
}

// SanitizeHTML strips everything outside a user generated content policy.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(s))
}

// TextCell renders the value at key as escaped text, or fallback when the
// value is missing or empty.
func TextCell[T Entity](key, fallback string) CellFunc[T] {
	return func(row T) template.HTML {
		return template.HTML(template.HTMLEscapeString(Or(CellText(FieldValue(row, key)), fallback)))
	}
}

// DateCell renders the time at key as a <time> element with a relative
// title. Missing times render as "".
func DateCell[T Entity](key string) CellFunc[T] {
	return func(row T) template.HTML {
		var t time.Time
		switch v := FieldValue(row, key).(type) {
		case time.Time:
			t = v
		default:
			return ""
		}
		if t.IsZero() {
			return ""
		}
		return template.HTML(fmt.Sprintf(`<time datetime="%s" title="%s">%s</time>`,
			t.Format(time.RFC3339),
			template.HTMLEscapeString(humanize.Time(t)),
			FormatDate(&t),
		))
	}
}

// BoolCell renders the bool at key as Yes or No; missing values render "".
func BoolCell[T Entity](key string) CellFunc[T] {
	return func(row T) template.HTML {
		b, ok := FieldValue(row, key).(bool)
		if !ok {
			return ""
		}
		return template.HTML(FormatBool(b))
	}
}

// RichTextCell renders the string at key as sanitized HTML.
func RichTextCell[T Entity](key string) CellFunc[T] {
	return func(row T) template.HTML {
		s, _ := FieldValue(row, key).(string)
		return SanitizeHTML(s)
	}
}
