// Package publish holds the descriptors the transformers hand to the index builder.
package publish

import (
	"sort"
)

// Kind distinguishes the two input types that can be published.
type Kind string

const (
	KindNotebook Kind = "notebook"
	KindMarkdown Kind = "markdown"
)

// Link is a named reference attached to a notebook or markdown document.
type Link struct {
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// DisplayName returns the link name, or "Link" when none was given.
func (l Link) DisplayName() string {
	if l.Name == "" {
		return "Link"
	}
	return l.Name
}

// Target returns the link URL, or "#" when none was given.
func (l Link) Target() string {
	if l.URL == "" {
		return "#"
	}
	return l.URL
}

// Item describes one processed input.
type Item struct {
	Name          string   // Base file name without extension
	Title         string   // Display title
	Description   string   // Optional description
	Kind          Kind     // notebook or markdown
	ExerciseFile  string   // Notebook: exercise variant file name
	AnswersFile   string   // Notebook: complete variant file name
	HTMLFile      string   // Markdown: rendered page file name
	DataFile      string   // Data archive file name, empty when none was built
	DataEntries   []string // Archive-internal names of the bundled data files
	Section       string   // Section label shown in the index
	SectionFolder string   // Source folder of the section
	Order         *float64 // Explicit ordering, nil when unordered
	Links         []Link
	Fingerprint   string // Content fingerprint of the source document
}

// HasData reports whether a data archive was produced for the item.
func (i *Item) HasData() bool {
	return i.DataFile != ""
}

// OutputFiles lists the files the item contributed to the output directory.
func (i *Item) OutputFiles() []string {
	var files []string
	for _, f := range []string{i.ExerciseFile, i.AnswersFile, i.HTMLFile, i.DataFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// SortItems orders items of one section in place: items with an order come
// first, ascending by order then name; items without one follow, descending by name.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := items[a], items[b]
		switch {
		case ia.Order != nil && ib.Order != nil:
			if *ia.Order != *ib.Order {
				return *ia.Order < *ib.Order
			}
			return ia.Name < ib.Name
		case ia.Order != nil:
			return true
		case ib.Order != nil:
			return false
		default:
			return ia.Name > ib.Name
		}
	})
}

// SectionGroup is a section label with its sorted items.
type SectionGroup struct {
	Label string
	Items []*Item
}

// GroupBySection groups items by section label. Groups are returned in
// ascending label order and each group is sorted with SortItems.
func GroupBySection(items []*Item) []SectionGroup {
	bySection := make(map[string][]*Item)
	for _, item := range items {
		bySection[item.Section] = append(bySection[item.Section], item)
	}
	labels := make([]string, 0, len(bySection))
	for label := range bySection {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]SectionGroup, 0, len(labels))
	for _, label := range labels {
		sectionItems := bySection[label]
		SortItems(sectionItems)
		groups = append(groups, SectionGroup{Label: label, Items: sectionItems})
	}
	return groups
}
