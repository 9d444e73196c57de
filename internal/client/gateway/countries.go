package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

// ListFields is the minimal field set requested for the full listing.
const ListFields = "name,cca3,flags,population,region,languages,capital"

// Countries is the public countries dataset. It never sends credentials.
type Countries struct {
	c *Client
}

func NewCountries(c *Client) *Countries {
	return &Countries{c: c}
}

func (s *Countries) list(ctx context.Context, op, path string, q url.Values) ([]models.Country, error) {
	var out []models.Country
	if err := s.c.do(ctx, call{op: op, method: http.MethodGet, path: path, query: q, out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Country{}
	}
	return out, nil
}

func (s *Countries) All(ctx context.Context) ([]models.Country, error) {
	return s.list(ctx, "all", "all", url.Values{"fields": {ListFields}})
}

func (s *Countries) ByName(ctx context.Context, name string) ([]models.Country, error) {
	return s.list(ctx, "by_name", "name/"+segment(name), nil)
}

func (s *Countries) ByRegion(ctx context.Context, region string) ([]models.Country, error) {
	return s.list(ctx, "by_region", "region/"+segment(region), nil)
}

func (s *Countries) ByLanguage(ctx context.Context, lang string) ([]models.Country, error) {
	return s.list(ctx, "by_language", "lang/"+segment(lang), nil)
}

// ByCode returns the single country behind a cca2/cca3 code. The API
// answers with a one-element list.
func (s *Countries) ByCode(ctx context.Context, code string) (models.Country, error) {
	items, err := s.list(ctx, "by_code", "alpha/"+segment(code), nil)
	if err != nil {
		return models.Country{}, err
	}
	if len(items) == 0 {
		return models.Country{}, &Error{Kind: KindNotFound, Op: "by_code", Message: "Country not found"}
	}
	return items[0], nil
}

func (s *Countries) Independent(ctx context.Context) ([]models.Country, error) {
	return s.list(ctx, "independent", "independent", url.Values{"status": {"true"}, "fields": {"name,cca3"}})
}
