package render

import "strings"

// Item is one labelled line of the review.
type Item struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section groups review items under a title.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Review is the read-only summary shown on the last step.
type Review struct {
	Sections []Section `json:"sections"`
}

// Add appends a section, dropping items with a blank value. A section left
// without items is not added.
func (r *Review) Add(title string, items ...Item) {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Value) == "" {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		return
	}
	r.Sections = append(r.Sections, Section{Title: title, Items: kept})
}

// Section returns the section titled title.
func (r Review) Section(title string) (Section, bool) {
	for _, section := range r.Sections {
		if section.Title == title {
			return section, true
		}
	}
	return Section{}, false
}

// Empty reports whether nothing would be shown.
func (r Review) Empty() bool {
	return len(r.Sections) == 0
}
