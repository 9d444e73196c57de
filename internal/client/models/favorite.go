package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Favorite is a backend-owned bookmark of a country. Removal is a soft
// delete: the record stays with IsAdded=false.
type Favorite struct {
	ID          string    `json:"_id"`
	CountryCode string    `json:"countryCode"`
	CountryName string    `json:"countryName,omitempty"`
	IsAdded     bool      `json:"isAdded"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f *Favorite) UnmarshalJSON(b []byte) error {
	type plain Favorite
	var aux struct {
		plain
		PlainID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*f = Favorite(aux.plain)
	if f.ID == "" {
		f.ID = aux.PlainID
	}
	return nil
}

// Active reports whether the favorite is currently in the user's list.
// Only an explicit isAdded=true counts.
func (f Favorite) Active() bool {
	return f.IsAdded
}

func (f Favorite) DisplayName() string {
	if f.CountryName != "" {
		return f.CountryName
	}
	return f.CountryCode
}

// FlagURL derives a flag image from the first two letters of the code.
func (f Favorite) FlagURL() string {
	code := strings.ToLower(f.CountryCode)
	if len(code) > 2 {
		code = code[:2]
	}
	return "https://flagcdn.com/" + code + ".svg"
}

// ActiveFavorites filters favs down to the active ones, keeping order.
func ActiveFavorites(favs []Favorite) []Favorite {
	out := make([]Favorite, 0, len(favs))
	for _, f := range favs {
		if f.Active() {
			out = append(out, f)
		}
	}
	return out
}
