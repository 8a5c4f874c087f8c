package domain

import (
	"path/filepath"
	"strings"
)

// AuthorTag identifies the attributed author or category of a source document.
// The string value is a stable storage code; use Label for display.
type AuthorTag string

// Available author tags. The set is closed: unrecognised sources map to AuthorOther.
const (
	AuthorBahaullah               AuthorTag = "bahaullah"
	AuthorAbdulBaha               AuthorTag = "abdul-baha"
	AuthorTheBab                  AuthorTag = "the-bab"
	AuthorShoghiEffendi           AuthorTag = "shoghi-effendi"
	AuthorUniversalHouseOfJustice AuthorTag = "uhj"
	AuthorCompilations            AuthorTag = "compilations"
	AuthorOther                   AuthorTag = "other"
)

// AllAuthorTags returns every tag in classification priority order.
func AllAuthorTags() []AuthorTag {
	return []AuthorTag{
		AuthorBahaullah,
		AuthorAbdulBaha,
		AuthorTheBab,
		AuthorShoghiEffendi,
		AuthorUniversalHouseOfJustice,
		AuthorCompilations,
		AuthorOther,
	}
}

// IsValid returns true if the tag is one of the closed set.
func (t AuthorTag) IsValid() bool {
	switch t {
	case AuthorBahaullah, AuthorAbdulBaha, AuthorTheBab, AuthorShoghiEffendi,
		AuthorUniversalHouseOfJustice, AuthorCompilations, AuthorOther:
		return true
	default:
		return false
	}
}

// String returns the storage code.
func (t AuthorTag) String() string {
	return string(t)
}

// Label returns the human-readable author name.
func (t AuthorTag) Label() string {
	switch t {
	case AuthorBahaullah:
		return "Bahá'u'lláh"
	case AuthorAbdulBaha:
		return "'Abdu'l-Bahá"
	case AuthorTheBab:
		return "The Báb"
	case AuthorShoghiEffendi:
		return "Shoghi Effendi"
	case AuthorUniversalHouseOfJustice:
		return "Universal House of Justice"
	case AuthorCompilations:
		return "Compilations"
	default:
		return "Other"
	}
}

// ParseAuthorTag accepts a storage code or a display label, with or without
// diacritics and apostrophes. Matching is case-insensitive.
func ParseAuthorTag(s string) (AuthorTag, bool) {
	key := foldAuthorKey(s)
	if key == "" {
		return "", false
	}
	for _, tag := range AllAuthorTags() {
		if key == foldAuthorKey(string(tag)) || key == foldAuthorKey(tag.Label()) {
			return tag, true
		}
	}
	switch key {
	case "universalhouseofjustice", "houseofjustice":
		return AuthorUniversalHouseOfJustice, true
	case "bab":
		return AuthorTheBab, true
	case "compilation":
		return AuthorCompilations, true
	}
	return "", false
}

// foldAuthorKey lowercases s and strips diacritics, apostrophes, spaces and dashes.
func foldAuthorKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case 'á', 'à', 'â':
			b.WriteRune('a')
		case 'í':
			b.WriteRune('i')
		case 'é':
			b.WriteRune('e')
		case '\'', '’', '‘', ' ', '-', '_':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// authorKeywords holds the filename keywords for each known author, in
// classification priority order. A keyword must not contain a keyword of
// an earlier list, otherwise the earlier list would shadow it.
var authorKeywords = []struct {
	tag      AuthorTag
	keywords []string
}{
	{AuthorBahaullah, []string{
		"kitab-i-iqan",
		"hidden-words",
		"gleanings",
		"kitab-i-aqdas",
		"epistle-son-wolf",
		"gems-divine-mysteries",
		"summons-lord-hosts",
		"tablets-bahaullah",
		"tabernacle-unity",
		"prayers-meditations",
		"seven-valleys",
		"call-divine-beloved",
	}},
	{AuthorAbdulBaha, []string{
		"some-answered-questions",
		"paris-talks",
		"promulgation-universal-peace",
		"memorials-faithful",
		"selections-writings-abdul-baha",
		"secret-divine-civilization",
		"travelers-narrative",
		"will-testament",
		"tablets-divine-plan",
		"tablet-auguste-forel",
		"tablets-hague",
	}},
	{AuthorTheBab, []string{
		"selections-writings-bab",
		"the-bab",
		"bayan",
	}},
	{AuthorShoghiEffendi, []string{
		"advent-divine-justice",
		"god-passes-by",
		"promised-day-come",
		"world-order-bahaullah",
		"citadel-faith",
		"bahai-administration",
		"shoghi-effendi",
	}},
	{AuthorUniversalHouseOfJustice, []string{
		"ridvan",
		"universal-house-of-justice",
		"house-justice",
		"uhj",
		"century-light",
		"one-common-faith",
	}},
	{AuthorCompilations, []string{
		"compilation",
		"days-remembrance",
		"light-of-the-world",
		"turning-point",
		"prayers",
	}},
}

// AuthorKeywords returns a copy of the keyword list for a tag.
// AuthorOther has no keywords.
func AuthorKeywords(tag AuthorTag) []string {
	for _, entry := range authorKeywords {
		if entry.tag == tag {
			out := make([]string, len(entry.keywords))
			copy(out, entry.keywords)
			return out
		}
	}
	return nil
}

// ClassifyAuthor derives the author tag of a source document from its filename.
//
// The filename is lowercased and tested against each keyword list in priority
// order; the first list containing a matching substring wins. Otherwise a
// base name starting with "19" or "20" is treated as a dated message of the
// Universal House of Justice. Everything else is AuthorOther.
func ClassifyAuthor(filename string) AuthorTag {
	name := strings.ToLower(filename)
	for _, entry := range authorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.tag
			}
		}
	}

	base := filepath.Base(name)
	if strings.HasPrefix(base, "19") || strings.HasPrefix(base, "20") {
		return AuthorUniversalHouseOfJustice
	}

	return AuthorOther
}

// AuthorFilter is a closed filter expression selecting passages by author.
// The zero value matches every author.
type AuthorFilter struct {
	tags map[AuthorTag]struct{}
}

// NewAuthorFilter builds a filter matching any of the given tags.
// Invalid tags are ignored.
func NewAuthorFilter(tags ...AuthorTag) AuthorFilter {
	f := AuthorFilter{}
	for _, t := range tags {
		if !t.IsValid() {
			continue
		}
		if f.tags == nil {
			f.tags = make(map[AuthorTag]struct{}, len(tags))
		}
		f.tags[t] = struct{}{}
	}
	return f
}

// ParseAuthorFilter parses codes or labels into a filter.
// It fails with ErrInvalidInput on the first unrecognised value.
func ParseAuthorFilter(values []string) (AuthorFilter, error) {
	tags := make([]AuthorTag, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		tag, ok := ParseAuthorTag(v)
		if !ok {
			return AuthorFilter{}, &authorParseError{value: v}
		}
		tags = append(tags, tag)
	}
	return NewAuthorFilter(tags...), nil
}

type authorParseError struct {
	value string
}

func (e *authorParseError) Error() string {
	return "unknown author: " + e.value
}

func (e *authorParseError) Unwrap() error {
	return ErrInvalidInput
}

// IsEmpty reports whether the filter matches every author.
func (f AuthorFilter) IsEmpty() bool {
	return len(f.tags) == 0
}

// Matches reports whether a tag passes the filter.
func (f AuthorFilter) Matches(tag AuthorTag) bool {
	if f.IsEmpty() {
		return true
	}
	_, ok := f.tags[tag]
	return ok
}

// Tags returns the selected tags in classification priority order.
func (f AuthorFilter) Tags() []AuthorTag {
	out := make([]AuthorTag, 0, len(f.tags))
	for _, t := range AllAuthorTags() {
		if _, ok := f.tags[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// String serialises the filter deterministically in priority order,
// e.g. "author in (bahaullah,uhj)".
func (f AuthorFilter) String() string {
	if f.IsEmpty() {
		return "all authors"
	}
	codes := make([]string, 0, len(f.tags))
	for _, t := range f.Tags() {
		codes = append(codes, t.String())
	}
	return "author in (" + strings.Join(codes, ",") + ")"
}
