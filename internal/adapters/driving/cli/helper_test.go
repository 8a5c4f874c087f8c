package cli

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

func (m *mockSearchService) Ready() bool { return true }

// mockJournalService is a mock implementation of driving.JournalService.
type mockJournalService struct {
	result      *domain.JournalResult
	err         error
	unavailable bool
	entry       string
	opts        domain.SearchOptions
}

func (m *mockJournalService) Reflect(_ context.Context, entry string, opts domain.SearchOptions) (*domain.JournalResult, error) {
	m.entry = entry
	m.opts = opts
	return m.result, m.err
}

func (m *mockJournalService) Available() bool { return !m.unavailable }

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	errs    map[string]error
	paths   []string
	authors []*domain.AuthorTag
	opts    []domain.IngestOptions
}

func (m *mockIngestService) Ingest(context.Context, domain.IngestRequest, domain.IngestOptions) (*domain.IngestReport, error) {
	return &domain.IngestReport{}, nil
}

func (m *mockIngestService) IngestFile(
	_ context.Context, path string, author *domain.AuthorTag, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	m.paths = append(m.paths, path)
	m.authors = append(m.authors, author)
	m.opts = append(m.opts, opts)
	if err := m.errs[path]; err != nil {
		return nil, err
	}

	tag := domain.ClassifyAuthor(path)
	if author != nil {
		tag = *author
	}
	report := &domain.IngestReport{SourceFile: path, Author: tag, Units: 3, Inserted: 2, Skipped: 1}
	if opts.Replace {
		report.Replaced = 3
	}
	return report, nil
}

func (m *mockIngestService) Status() driving.IngestStatus { return driving.IngestStatus{} }

// mockWatchService is a mock implementation of driving.WatchService.
type mockWatchService struct {
	root string
	err  error
}

func (m *mockWatchService) Watch(_ context.Context, root string, _ domain.IngestOptions) error {
	m.root = root
	return m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	importReport *domain.ImportReport
	importPath   string
	exported     string
	stats        *domain.IndexStats
	deleted      int
	deleteSource string
	deleteAll    bool
	err          error
}

func (m *mockIndexService) Import(context.Context, io.Reader) (*domain.ImportReport, error) {
	return m.importReport, m.err
}

func (m *mockIndexService) ImportFile(_ context.Context, path string) (*domain.ImportReport, error) {
	m.importPath = path
	return m.importReport, m.err
}

func (m *mockIndexService) Export(_ context.Context, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, err := io.WriteString(w, m.exported)
	return strings.Count(m.exported, `"id"`), err
}

func (m *mockIndexService) Stats(context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) DeleteSource(_ context.Context, source string) (int, error) {
	m.deleteSource = source
	return m.deleted, m.err
}

func (m *mockIndexService) DeleteAll(context.Context) (int, error) {
	m.deleteAll = true
	return m.deleted, m.err
}

// mockCorpus lists a fixed set of files per root.
type mockCorpus struct {
	files map[string][]string
	err   error
}

func (m *mockCorpus) List(_ context.Context, root string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.files[root], nil
}

// mockPreparer counts Prepare calls. With block set it waits for ctx.
type mockPreparer struct {
	calls int
	err   error
	block bool
}

func (m *mockPreparer) Prepare(ctx context.Context) error {
	m.calls++
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.Settings
	set      map[string]string
	setErr   error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"data_dir", "index.strategy", "llm.provider"}
}

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search   *mockSearchService
	journal  *mockJournalService
	ingest   *mockIngestService
	watch    *mockWatchService
	index    *mockIndexService
	corpus   *mockCorpus
	embedder *mockPreparer
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			DocumentID:     "hidden-words.txt:0",
			Text:           "O Son of Spirit! My first counsel is this: Possess a pure, kindly and radiant heart.",
			SourceFile:     "hidden-words.txt",
			Author:         domain.AuthorBahaullah,
			AuthorLabel:    domain.AuthorBahaullah.Label(),
			Score:          0.812,
			LibraryURL:     domain.LibraryURL("hidden-words.txt"),
			ParagraphIndex: 0,
		},
		{
			DocumentID:  "paris-talks.txt:4",
			Text:        "The gift of God to this enlightened age is the knowledge of the oneness of mankind.",
			SourceFile:  "paris-talks.txt",
			Author:      domain.AuthorAbdulBaha,
			AuthorLabel: domain.AuthorAbdulBaha.Label(),
			Score:       0.644,
		},
	}
}

// setupTestServices installs mock services and returns a cleanup that
// restores the package state, including every flag.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search: &mockSearchService{results: sampleResults()},
		journal: &mockJournalService{result: &domain.JournalResult{
			Rephrased: "Grief and trust in the mercy of God.",
			Results:   sampleResults(),
		}},
		ingest: &mockIngestService{},
		watch:  &mockWatchService{},
		index: &mockIndexService{
			importReport: &domain.ImportReport{Imported: 2},
			stats: &domain.IndexStats{
				Total:     3,
				PerAuthor: map[domain.AuthorTag]int{domain.AuthorBahaullah: 2, domain.AuthorUniversalHouseOfJustice: 1},
				Dimension: 384,
				Strategy:  "exact",
				Model:     "all-MiniLM-L6-v2",
			},
		},
		corpus:   &mockCorpus{files: map[string][]string{}},
		embedder: &mockPreparer{},
	}

	services = &Services{
		Search:   ts.search,
		Journal:  ts.journal,
		Ingest:   ts.ingest,
		Watch:    ts.watch,
		Index:    ts.index,
		Corpus:   ts.corpus,
		Embedder: ts.embedder,
	}

	return ts, resetCLIState
}

func resetCLIState() {
	services = nil
	settingsService = nil

	searchLimit, searchAuthors, searchJSON = domain.DefaultSearchLimit, nil, false
	journalLimit, journalAuthors, journalJSON = domain.DefaultSearchLimit, nil, false
	ingestAuthor, ingestReplace, ingestWatch = "", false, false
	exportOutput, statsJSON = "", false
	deleteSource, deleteAll = "", false
	verbose, logJSON = false, false

	resetChanged(rootCmd)
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}

// resetChanged clears the Changed mark cobra leaves on parsed flags, so
// flag groups are checked afresh on the next run.
func resetChanged(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	for _, sub := range cmd.Commands() {
		resetChanged(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// executeWithInput runs the root command reading stdin from input.
func executeWithInput(input string, args ...string) (string, error) {
	rootCmd.SetIn(strings.NewReader(input))
	return execute(args...)
}
