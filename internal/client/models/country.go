package models

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Country mirrors a record of the public countries dataset. It is read-only
// from the client's point of view.
type Country struct {
	CCA3       string              `json:"cca3"`
	Name       CountryName         `json:"name"`
	Flags      Flags               `json:"flags"`
	Population int64               `json:"population"`
	Region     string              `json:"region"`
	Subregion  string              `json:"subregion,omitempty"`
	Capital    []string            `json:"capital,omitempty"`
	Area       float64             `json:"area,omitempty"`
	Languages  map[string]string   `json:"languages,omitempty"`
	Currencies map[string]Currency `json:"currencies,omitempty"`
	Timezones  []string            `json:"timezones,omitempty"`
	Continents []string            `json:"continents,omitempty"`
	Borders    []string            `json:"borders,omitempty"`

	Independent bool `json:"independent,omitempty"`
}

type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official,omitempty"`
}

type Flags struct {
	PNG string `json:"png,omitempty"`
	SVG string `json:"svg,omitempty"`
	Alt string `json:"alt,omitempty"`
}

type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// DisplayName prefers the common name and falls back to the code.
func (c Country) DisplayName() string {
	if c.Name.Common != "" {
		return c.Name.Common
	}
	return c.CCA3
}

func (c Country) CapitalList() string {
	if len(c.Capital) == 0 {
		return "N/A"
	}
	return strings.Join(c.Capital, ", ")
}

// HasLanguage reports whether any of the country's languages matches lang
// by name or by its ISO 639-3 key, ignoring case.
func (c Country) HasLanguage(lang string) bool {
	for code, name := range c.Languages {
		if strings.EqualFold(code, lang) || strings.EqualFold(name, lang) {
			return true
		}
	}
	return false
}

// LanguageList returns language names sorted alphabetically.
func (c Country) LanguageList() []string {
	out := make([]string, 0, len(c.Languages))
	for _, name := range c.Languages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SortCountriesByName returns a copy of items ordered by common name using
// the collation rules of tag. The input slice is left untouched.
func SortCountriesByName(items []Country, tag language.Tag) []Country {
	out := make([]Country, len(items))
	copy(out, items)

	col := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].DisplayName(), out[j].DisplayName()) < 0
	})
	return out
}
