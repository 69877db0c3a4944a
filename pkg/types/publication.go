// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data types shared across analysis stages.
package types

// Publication is one analyzed unit of a corpus. Records are created once per
// acquisition run and are not modified by any analysis stage.
type Publication struct {
	// ID is a stable identifier (DOI or source-assigned key), unique within a corpus.
	ID string `json:"id" yaml:"id"`

	// Title is the publication title. May be empty.
	Title string `json:"title" yaml:"title"`

	// Abstract is the publication abstract. May be empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year. Nil when unknown; such records are
	// excluded from temporal analysis but kept for extraction and clustering.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Keywords are the tokens provided by the source API, in source order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// DOI is the digital object identifier when the source provides one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Source names the API the record came from (e.g. "openalex", "core").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// PublicationDate is the raw date string from the source.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// FieldsOfStudy are subject labels some sources attach (OpenAlex, Semantic Scholar).
	FieldsOfStudy []string `json:"fields_of_study,omitempty" yaml:"fields_of_study,omitempty"`

	// CitedByCount is the citation count reported by the source.
	CitedByCount int `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`
}

// HasYear reports whether the publication has a usable year.
func (p Publication) HasYear() bool {
	return p.Year != nil
}

// Text returns the title and abstract joined for text analysis.
func (p Publication) Text() string {
	switch {
	case p.Title == "":
		return p.Abstract
	case p.Abstract == "":
		return p.Title
	default:
		return p.Title + ". " + p.Abstract
	}
}

// IntPtr returns a pointer to v. Handy for building Publication.Year.
func IntPtr(v int) *int {
	return &v
}
