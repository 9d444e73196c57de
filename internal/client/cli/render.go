package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

var numbers = message.NewPrinter(language.English)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderCountries prints a table of items. isFav may be nil, in which case
// the favorite column is left out.
func renderCountries(w io.Writer, items []models.Country, isFav func(code string) bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No countries found")
		return
	}
	tw := newTable(w)
	if isFav != nil {
		fmt.Fprintln(tw, "\tCODE\tNAME\tREGION\tPOPULATION\tCAPITAL")
	} else {
		fmt.Fprintln(tw, "CODE\tNAME\tREGION\tPOPULATION\tCAPITAL")
	}
	for _, c := range items {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", c.CCA3, c.DisplayName(), c.Region,
			numbers.Sprintf("%d", c.Population), c.CapitalList())
		if isFav != nil {
			mark := " "
			if isFav(c.CCA3) {
				mark = "*"
			}
			row = mark + "\t" + row
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

func renderCountry(w io.Writer, c models.Country, favorite bool) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", c.DisplayName())
	if c.Name.Official != "" {
		fmt.Fprintf(tw, "Official:\t%s\n", c.Name.Official)
	}
	fmt.Fprintf(tw, "Code:\t%s\n", c.CCA3)
	fmt.Fprintf(tw, "Region:\t%s\n", c.Region)
	if c.Subregion != "" {
		fmt.Fprintf(tw, "Subregion:\t%s\n", c.Subregion)
	}
	fmt.Fprintf(tw, "Capital:\t%s\n", c.CapitalList())
	fmt.Fprintf(tw, "Population:\t%s\n", numbers.Sprintf("%d", c.Population))
	fmt.Fprintf(tw, "Languages:\t%s\n", joinOr(c.LanguageList(), "N/A"))
	fmt.Fprintf(tw, "Borders:\t%s\n", joinOr(c.Borders, "None"))
	if c.Flags.PNG != "" {
		fmt.Fprintf(tw, "Flag:\t%s\n", c.Flags.PNG)
	}
	fmt.Fprintf(tw, "Favorite:\t%s\n", yesNo(favorite))
	_ = tw.Flush()
}

func renderFavorites(w io.Writer, favs []models.Favorite) {
	if len(favs) == 0 {
		fmt.Fprintln(w, "No favorites yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tADDED")
	for _, f := range favs {
		added := ""
		if !f.CreatedAt.IsZero() {
			added = f.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.CountryCode, f.DisplayName(), added)
	}
	_ = tw.Flush()
}

func renderProfile(w io.Writer, u models.User, favs []models.Favorite) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	if u.Bio != "" {
		fmt.Fprintf(tw, "Bio:\t%s\n", u.Bio)
	}
	if u.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", u.Location)
	}
	if u.Website != "" {
		fmt.Fprintf(tw, "Website:\t%s\n", u.Website)
	}
	if u.CreatedAt != nil {
		fmt.Fprintf(tw, "Member since:\t%s\n", u.CreatedAt.Format("January 2006"))
	}
	codes := make([]string, 0, len(favs))
	for _, f := range favs {
		codes = append(codes, f.CountryCode)
	}
	fmt.Fprintf(tw, "Favorites:\t%s\n", joinOr(codes, "None"))
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
