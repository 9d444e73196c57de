package countries

import (
	"context"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
)

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// Source is the remote countries dataset. *gateway.Countries implements it.
type Source interface {
	All(ctx context.Context) ([]models.Country, error)
	ByName(ctx context.Context, name string) ([]models.Country, error)
	ByRegion(ctx context.Context, region string) ([]models.Country, error)
	ByLanguage(ctx context.Context, lang string) ([]models.Country, error)
	ByCode(ctx context.Context, code string) (models.Country, error)
	Independent(ctx context.Context) ([]models.Country, error)
}
