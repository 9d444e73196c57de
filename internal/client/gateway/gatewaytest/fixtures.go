package gatewaytest

import "github.com/dmitrijs2005/countrybook/internal/client/models"

// SampleCountries is a small dataset covering several regions and
// languages.
func SampleCountries() []models.Country {
	return []models.Country{
		{
			CCA3: "FRA", Name: models.CountryName{Common: "France", Official: "French Republic"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/fr.png", SVG: "https://flagcdn.com/fr.svg"},
			Population: 67391582, Region: "Europe", Capital: []string{"Paris"},
			Languages: map[string]string{"fra": "French"}, Independent: true,
		},
		{
			CCA3: "DEU", Name: models.CountryName{Common: "Germany", Official: "Federal Republic of Germany"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/de.png", SVG: "https://flagcdn.com/de.svg"},
			Population: 83240525, Region: "Europe", Capital: []string{"Berlin"},
			Languages: map[string]string{"deu": "German"}, Independent: true,
		},
		{
			CCA3: "BRA", Name: models.CountryName{Common: "Brazil", Official: "Federative Republic of Brazil"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/br.png", SVG: "https://flagcdn.com/br.svg"},
			Population: 212559409, Region: "Americas", Capital: []string{"Brasília"},
			Languages: map[string]string{"por": "Portuguese"}, Independent: true,
		},
		{
			CCA3: "CAN", Name: models.CountryName{Common: "Canada", Official: "Canada"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/ca.png", SVG: "https://flagcdn.com/ca.svg"},
			Population: 38005238, Region: "Americas", Capital: []string{"Ottawa"},
			Languages: map[string]string{"eng": "English", "fra": "French"}, Independent: true,
		},
		{
			CCA3: "JPN", Name: models.CountryName{Common: "Japan", Official: "Japan"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/jp.png", SVG: "https://flagcdn.com/jp.svg"},
			Population: 125836021, Region: "Asia", Capital: []string{"Tokyo"},
			Languages: map[string]string{"jpn": "Japanese"}, Independent: true,
		},
		{
			CCA3: "GRL", Name: models.CountryName{Common: "Greenland", Official: "Greenland"},
			Flags: models.Flags{PNG: "https://flagcdn.com/w320/gl.png", SVG: "https://flagcdn.com/gl.svg"},
			Population: 56367, Region: "Americas", Capital: []string{"Nuuk"},
			Languages: map[string]string{"kal": "Greenlandic"},
		},
	}
}
