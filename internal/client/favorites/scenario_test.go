package favorites_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/countrybook/internal/client/favorites"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway/gatewaytest"
	"github.com/dmitrijs2005/countrybook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Removing a favorite against a soft-deleting backend drops it from the
// active list while the record itself survives.
func TestSoftDeleteScenario(t *testing.T) {
	srv := gatewaytest.New(t)
	srv.SeedCountries(gatewaytest.SampleCountries()...)
	user, token := srv.SeedUser("Ann", "ann@example.com", "secret1")

	client, err := gateway.NewClient(srv.APIURL())
	require.NoError(t, err)
	backend := gateway.NewBackend(client, gateway.AuthorizerFunc(func(r *http.Request) error {
		r.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
		return nil
	}))
	svc := favorites.New(backend, nil)
	ctx := context.Background()

	fra, err := svc.Add(ctx, "FRA")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "BRA")
	require.NoError(t, err)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	removed, err := svc.Remove(ctx, fra.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.False(t, removed.IsAdded)

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "BRA", active[0].CountryCode)

	stored := srv.Favorites(user.ID)
	assert.Len(t, stored, 2, "record is soft-deleted, not removed")

	_, ok := svc.Status(ctx, "FRA")
	assert.False(t, ok)
}
