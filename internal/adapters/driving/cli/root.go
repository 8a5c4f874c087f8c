// Package cli provides the insight command-line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
	"github.com/custodia-labs/insight/internal/metrics"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	verbose  bool
	logJSON  bool
	errNoSvc = errors.New("services not configured")
)

// Preparer loads model assets ahead of the first embedding.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// CorpusLister lists corpus files below a root path.
type CorpusLister interface {
	List(ctx context.Context, root string) ([]string, error)
}

// Services holds everything the commands need beyond settings.
type Services struct {
	Search  driving.SearchService
	Journal driving.JournalService
	Ingest  driving.IngestService
	Watch   driving.WatchService
	Index   driving.IndexService
	Corpus  CorpusLister

	// Embedder is prepared before embedding commands run.
	Embedder Preparer

	// PrepareTimeout bounds Embedder.Prepare. Zero means no bound.
	PrepareTimeout time.Duration

	// Metrics is exposed by the serve command.
	Metrics *metrics.Metrics

	// Close releases the store, the model and any watchers.
	Close func()
}

// Bootstrap builds Services. It runs once, the first time a command needs
// the index, so that commands such as version and classify never open it.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	bootstrap       Bootstrap
	services        *Services
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Semantic search over the Bahá'í writings",
	Long: `Insight finds passages in the Bahá'í writings by meaning rather than by
keyword. Paragraphs are embedded locally with a sentence-transformer model
and kept in a SQLite index under ~/.insight.

Search with a word, a phrase or a question, filter by author, or write a
journal entry and read passages chosen for it.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetSettingsService sets the settings service used by the config command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// Execute runs the root command until it finishes or the process is
// interrupted, then releases the services. Command output goes to stdout and
// logs to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()

	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// loadServices builds the services on first use.
func loadServices(ctx context.Context) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errNoSvc
	}
	s, err := bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

// prepared loads the services and prepares the embedder.
func prepared(ctx context.Context) (*Services, error) {
	s, err := loadServices(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// prepareInBackground starts Prepare without blocking. Long-running
// surfaces report not ready until it completes.
func prepareInBackground(ctx context.Context, s *Services) {
	if s.Embedder == nil {
		return
	}
	go func() {
		if err := s.prepare(ctx); err != nil && ctx.Err() == nil {
			logger.Error(err, "Embedder failed to load")
		}
	}()
}

// prepare runs Embedder.Prepare within PrepareTimeout.
func (s *Services) prepare(ctx context.Context) error {
	if s.Embedder == nil {
		return nil
	}
	if s.PrepareTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.PrepareTimeout)
		defer cancel()
	}
	logger.Debug("Preparing embedder")
	if err := s.Embedder.Prepare(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("embedder not ready after %s: %w", s.PrepareTimeout, err)
		}
		return err
	}
	return nil
}

func closeServices() {
	if services != nil && services.Close != nil {
		services.Close()
	}
	services = nil
}
