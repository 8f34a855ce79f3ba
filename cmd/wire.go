package cmd

import (
	"fmt"
	"io"
	"net/http"

	configrepo "github.com/bnema/family-draft-cli/internal/adapters/config/toml"
	"github.com/bnema/family-draft-cli/internal/adapters/draftapi"
	"github.com/bnema/family-draft-cli/internal/adapters/metrics"
	boardadapter "github.com/bnema/family-draft-cli/internal/adapters/render/board"
	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/bnema/family-draft-cli/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	config        *configrepo.Repository
	metrics       *metrics.Recorder
	boardRenderer func(*domain.Snapshot, []application.Row, boardadapter.RenderOptions) (string, error)
	httpClient    *http.Client
}

// services is what one command run needs to talk to the draft service. The
// synchronizer and dispatcher share one state cell.
type services struct {
	settings     configrepo.Settings
	synchronizer *application.Synchronizer
	dispatcher   *application.Dispatcher
	logger       zerolog.Logger
	closeLog     io.Closer
}

func wireApp() (*app, error) {
	repo, err := configrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire config repository: %w", err)
	}

	return &app{
		config:        repo,
		metrics:       metrics.NewRecorder(),
		boardRenderer: boardadapter.Render,
		httpClient:    http.DefaultClient,
	}, nil
}

// wireServices builds the draft client stack. Logs go to console when
// logFile is empty.
func (a *app) wireServices(console io.Writer, logFile string) (*services, error) {
	settings, err := a.config.Settings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{Level: settings.LogLevel, File: logFile, Console: console})
	if err != nil {
		return nil, err
	}

	client := &draftapi.Client{
		BaseURL:        settings.Endpoint,
		HTTPClient:     a.httpClient,
		RequestTimeout: settings.RequestTimeout,
	}
	endpointErr := draftapi.ValidateEndpoint(settings.Endpoint)

	cell := application.NewStateCell(application.WithDiscardStale(settings.DiscardStale))

	return &services{
		settings: settings,
		synchronizer: application.NewSynchronizer(client, cell,
			application.WithPollInterval(settings.PollInterval),
			application.WithConfigError(endpointErr),
			application.WithSyncMetrics(a.metrics),
			application.WithSyncLogger(logger),
		),
		dispatcher: application.NewDispatcher(client, cell,
			application.WithDispatchConfigError(endpointErr),
			application.WithDispatchMetrics(a.metrics),
			application.WithDispatchLogger(logger),
		),
		logger:   logger,
		closeLog: closer,
	}, nil
}

func (s *services) Close() error {
	return s.closeLog.Close()
}
