package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidTagCategory = goerr.New("invalid tag category")
)

type TagCategory string

const (
	TagCategoryPeople   TagCategory = "people"
	TagCategoryTasks    TagCategory = "tasks"
	TagCategoryEmotions TagCategory = "emotions"
	TagCategoryThemes   TagCategory = "themes"
	TagCategorySymbols  TagCategory = "symbols"
)

// Validate checks if the category is one of the known categories
func (c TagCategory) Validate() error {
	switch c {
	case TagCategoryPeople, TagCategoryTasks, TagCategoryEmotions, TagCategoryThemes, TagCategorySymbols:
		return nil
	default:
		return goerr.Wrap(ErrInvalidTagCategory, "unknown category", goerr.V("category", c))
	}
}

// Includes reports whether the filter c admits category t. An empty filter
// admits every category.
func (c TagCategory) Includes(t TagCategory) bool {
	return c == "" || c == t
}

type TagSentiment struct {
	Average float64    `json:"average"`
	Range   [2]float64 `json:"range"`
}

// TagAggregate summarizes every occurrence of one tag string
type TagAggregate struct {
	Tag                string       `json:"tag"`
	Category           TagCategory  `json:"category"`
	Frequency          int          `json:"frequency"`
	FirstSeen          int64        `json:"firstSeen"`
	LastSeen           int64        `json:"lastSeen"`
	AssociatedEmotions []string     `json:"associatedEmotions"`
	Sentiment          TagSentiment `json:"sentiment"`
}
