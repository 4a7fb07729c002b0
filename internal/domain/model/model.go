// Package model contains domain models passed between layers.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind tags an opportunity as a job opening or a training program.
type Kind string

// Opportunity kinds.
const (
	KindJob      Kind = "JOB"
	KindTraining Kind = "TRAINING"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindJob:
		return KindJob, nil
	case KindTraining:
		return KindTraining, nil
	default:
		return "", fmt.Errorf("unknown opportunity kind: %q", s)
	}
}

// CatalogEntry is one opportunity in a catalog snapshot. Identity is the id;
// entries are immutable and replaced wholesale on refresh.
type CatalogEntry struct {
	ID   uuid.UUID
	Kind Kind
}

// TitleRow is a raw repository row: an opportunity id with its kind and
// localized title. Rows describe active opportunities only; inactive ones are
// filtered upstream.
type TitleRow struct {
	ID    uuid.UUID
	Kind  Kind
	Title string
}

// SortDirection orders catalog listings by localized title.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection converts a string into a SortDirection, defaulting to
// ascending for the empty string.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	default:
		return "", fmt.Errorf("unknown sort direction: %q", s)
	}
}

// Language selects the localized catalog view.
type Language string

// Supported catalog languages.
const (
	LangFI Language = "fi"
	LangSV Language = "sv"
	LangEN Language = "en"
)

// ParseLanguage converts a string into a Language, defaulting to Finnish for
// the empty string.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case "", LangFI:
		return LangFI, nil
	case LangSV:
		return LangSV, nil
	case LangEN:
		return LangEN, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", s)
	}
}

// ValueShare is one recorded attribute value and its share of the total.
type ValueShare struct {
	Value string
	Share float64
}

// Distribution is a precomputed histogram of an opportunity attribute
// (e.g. the skills it covers). Owned by the opportunity aggregate and
// read-only to the engine.
type Distribution struct {
	TotalCount int
	EmptyCount int
	Values     []ValueShare
}

// TrainingDistribution pairs a training opportunity id with its skills
// distribution.
type TrainingDistribution struct {
	ID   uuid.UUID
	Dist Distribution
}
