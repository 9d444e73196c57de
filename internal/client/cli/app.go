package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/countrybook/internal/client/config"
	"github.com/dmitrijs2005/countrybook/internal/client/countries"
	"github.com/dmitrijs2005/countrybook/internal/client/export"
	"github.com/dmitrijs2005/countrybook/internal/client/favorites"
	"github.com/dmitrijs2005/countrybook/internal/client/gateway"
	"github.com/dmitrijs2005/countrybook/internal/client/metrics"
	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/dmitrijs2005/countrybook/internal/client/routes"
	"github.com/dmitrijs2005/countrybook/internal/client/session"
	"github.com/dmitrijs2005/countrybook/internal/client/storage"
	"github.com/dmitrijs2005/countrybook/internal/client/theme"
	"github.com/dmitrijs2005/countrybook/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	state     *storage.SQLiteStore
	metrics   *metrics.Metrics
	router    *routes.Router
	session   *session.Store
	countries *countries.Store
	favorites *favorites.Service
	theme     *theme.Store
	exporter  *export.Exporter

	unsubscribe func()
}

// NewApp wires every client component from c. The caller must call Close
// (Run does it) to release the state file.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	st, err := storage.Open(ctx, c.StateFile)
	if err != nil {
		log.Error(ctx, "error opening client state", "file", c.StateFile, "err", err)
		return nil, err
	}

	m := metrics.New()
	clientOpts := []gateway.Option{
		gateway.WithTimeout(c.RequestTimeout),
		gateway.WithLogger(log),
		gateway.WithMetrics(m),
	}
	api, err := gateway.NewClient(c.APIBaseURL, clientOpts...)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("api client: %w", err)
	}
	countryAPI, err := gateway.NewClient(c.CountriesBaseURL, clientOpts...)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("countries client: %w", err)
	}

	router := routes.New(log)
	sess := session.New(ctx, api, st, router, log)
	router.SetGuard(sess)
	router.OnNavigate(func(m routes.Match) {
		log.Debug(context.Background(), "route changed", "path", m.Path, "route", m.Route.Name)
	})

	var s3exp *export.S3Exporter
	if c.S3.Endpoint != "" || c.S3.AccessKey != "" {
		s3exp, err = export.NewS3ExporterFromSettings(ctx, export.S3Settings{
			Endpoint:     c.S3.Endpoint,
			Region:       c.S3.Region,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			UsePathStyle: c.S3.UsePathStyle,
		})
		if err != nil {
			log.Warn(ctx, "s3 export disabled", "err", err)
		}
	}

	a := &App{
		config:    c,
		log:       log,
		out:       os.Stdout,
		reader:    bufio.NewReader(os.Stdin),
		state:     st,
		metrics:   m,
		router:    router,
		session:   sess,
		countries: countries.New(gateway.NewCountries(countryAPI), log),
		favorites: favorites.New(sess.Backend(), log),
		theme:     theme.New(ctx, st, models.Theme(c.Theme), log),
		exporter:  export.New(s3exp, log),
	}
	a.unsubscribe = a.countries.Subscribe(a.onView)
	return a, nil
}

// Run loads the country list and blocks in the REPL until the user exits
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.config.MetricsAddr != "" {
		srv := a.metricsServer()
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error(ctx, "metrics listener stopped", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	fmt.Fprintln(a.out, "Welcome to countrybook (type 'help' for commands)")
	if err := a.Reload(ctx); err != nil {
		report(err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) metricsServer() *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", a.metrics.Handler())
	return &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.state != nil {
		if err := a.state.Close(); err != nil {
			a.log.Warn(context.Background(), "closing client state", "err", err)
		}
		a.state = nil
	}
}

func (a *App) onView(v countries.View) {
	if v.Loading {
		a.log.Debug(context.Background(), "loading countries", "query", v.Query.String())
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	name := "guest"
	if u, ok := a.session.User(); ok {
		name = u.Name
		if name == "" {
			name = u.Email
		}
	}
	return fmt.Sprintf("(%s %s)", name, a.theme.Theme())
}
