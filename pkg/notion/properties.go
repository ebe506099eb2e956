package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// maxTextLength is Notion's limit for a single rich-text content item.
const maxTextLength = 2000

func richText(s string) []notionapi.RichText {
	if len(s) > maxTextLength {
		s = s[:maxTextLength]
	}
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// Title builds a title property.
func Title(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Type:  notionapi.PropertyTypeTitle,
		Title: richText(s),
	}
}

// Text builds a rich-text property.
func Text(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type:     notionapi.PropertyTypeRichText,
		RichText: richText(s),
	}
}

// Number builds a number property.
func Number(v float64) notionapi.NumberProperty {
	return notionapi.NumberProperty{
		Type:   notionapi.PropertyTypeNumber,
		Number: v,
	}
}

// Select builds a select property.
func Select(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: name},
	}
}

// MultiSelect builds a multi-select property.
func MultiSelect(names []string) notionapi.MultiSelectProperty {
	opts := make([]notionapi.Option, len(names))
	for i, n := range names {
		opts[i] = notionapi.Option{Name: n}
	}
	return notionapi.MultiSelectProperty{
		Type:        notionapi.PropertyTypeMultiSelect,
		MultiSelect: opts,
	}
}

// URL builds a URL property.
func URL(u string) notionapi.URLProperty {
	return notionapi.URLProperty{
		Type: notionapi.PropertyTypeURL,
		URL:  u,
	}
}

// Date builds a date property.
func Date(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Type: notionapi.PropertyTypeDate,
		Date: &notionapi.DateObject{Start: &d},
	}
}

// PlainText concatenates the plain text of rich-text items.
func PlainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		if rt.PlainText != "" {
			s += rt.PlainText
		} else if rt.Text != nil {
			s += rt.Text.Content
		}
	}
	return s
}

// TextValue reads a title or rich-text property from a page.
func TextValue(p notionapi.Page, property string) string {
	switch prop := p.Properties[property].(type) {
	case *notionapi.RichTextProperty:
		return PlainText(prop.RichText)
	case *notionapi.TitleProperty:
		return PlainText(prop.Title)
	case notionapi.RichTextProperty:
		return PlainText(prop.RichText)
	case notionapi.TitleProperty:
		return PlainText(prop.Title)
	}
	return ""
}
