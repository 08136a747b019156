package sanctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"sanctions-sync/internal/domain/entity"
	"sanctions-sync/internal/infra/fetcher"
	"sanctions-sync/internal/infra/parser"
	"sanctions-sync/internal/observability/logging"
	"sanctions-sync/internal/observability/metrics"
	"sanctions-sync/internal/observability/tracing"
	"sanctions-sync/internal/repository"
)

// Fetcher downloads a document. A failed download is reported in the
// Result, never as a panic or a nil body with StatusOK.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetcher.Result
}

// Config selects the sources and load strategy of a run.
type Config struct {
	OFACSDNURL        string
	UNConsolidatedURL string
	// ProtectOnFailure selects ModeProtected when true, ModeLegacy otherwise.
	ProtectOnFailure bool
}

func (c Config) mode() Mode {
	if c.ProtectOnFailure {
		return ModeProtected
	}
	return ModeLegacy
}

// Service runs the sanctions list sync.
type Service struct {
	fetcher Fetcher
	loader  repository.TableLoader
	cfg     Config
	logger  *slog.Logger

	newRunID func() string
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(f Fetcher, loader repository.TableLoader, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:  f,
		loader:   loader,
		cfg:      cfg,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// datasetInfo is the static description of a dataset.
type datasetInfo struct {
	dataset Dataset
	table   string
	// label is the human-readable name used in status lines.
	label string
}

var (
	ofacSDN = datasetInfo{
		dataset: DatasetOFACSDN,
		table:   entity.TableOFACSDN,
		label:   "OFAC SDN entries",
	}
	unIndividuals = datasetInfo{
		dataset: DatasetUNIndividuals,
		table:   entity.TableUNConsolidated,
		label:   "UN Consolidated list entries",
	}
	unEntities = datasetInfo{
		dataset: DatasetUNEntities,
		table:   entity.TableUNConsolidatedEntities,
		label:   "UN Consolidated list entities entries",
	}
)

// Run downloads both lists, parses the three datasets, and loads them.
//
// In ModeLegacy the sequence is: fetch and parse OFAC, truncate all three
// tables, insert OFAC, fetch UN and parse it twice, insert individuals, insert
// entities. Every stage runs regardless of earlier failures, so a failed
// download leaves its table empty.
//
// In ModeProtected each table is replaced in a single transaction, and only
// when its dataset is OutcomeLoaded. Failed and empty datasets leave the table
// as it was.
//
// Run always returns stats. The error wraps ErrIncompleteRun when any dataset
// failed to download, parse, or load.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{
		RunID: s.newRunID(),
		Mode:  s.cfg.mode(),
		Datasets: []DatasetStats{
			{Dataset: ofacSDN.dataset, Table: ofacSDN.table},
			{Dataset: unIndividuals.dataset, Table: unIndividuals.table},
			{Dataset: unEntities.dataset, Table: unEntities.table},
		},
	}

	logger := s.logger.With(slog.String("run_id", stats.RunID))
	ctx = logging.WithLogger(ctx, logger)
	ctx, span := tracing.StartSpan(ctx, "sanctions.Run",
		attribute.String("sync.run_id", stats.RunID),
		attribute.String("sync.mode", string(stats.Mode)))

	logger.Info("sanctions sync started", slog.String("mode", string(stats.Mode)))

	if stats.Mode == ModeProtected {
		s.runProtected(ctx, stats)
	} else {
		s.runLegacy(ctx, stats)
	}

	stats.Duration = time.Since(start)
	metrics.RecordSyncRun(stats.Duration)
	s.logSummary(logger, stats)

	err := stats.Err()
	span.SetAttributes(attribute.Int("sync.tables_loaded", stats.TablesLoaded()))
	tracing.EndSpan(span, err)
	return stats, err
}

func (s *Service) runLegacy(ctx context.Context, stats *RunStats) {
	ofacSt := stats.Dataset(DatasetOFACSDN)
	indSt := stats.Dataset(DatasetUNIndividuals)
	entSt := stats.Dataset(DatasetUNEntities)

	ofacRes := s.download(ctx, "OFAC SDN", s.cfg.OFACSDNURL)
	ofacRecords := parseDataset(ctx, ofacSt, ofacRes, parser.ParseSDN, entity.SdnRecords)

	for _, ds := range stats.Datasets {
		s.truncate(ctx, stats.Dataset(ds.Dataset))
	}

	s.insert(ctx, ofacSt, ofacSDN.label, ofacRecords)

	unRes := s.download(ctx, "UN Consolidated", s.cfg.UNConsolidatedURL)
	indRecords := parseDataset(ctx, indSt, unRes, parser.ParseConsolidatedIndividuals, entity.IndividualRecords)
	entRecords := parseDataset(ctx, entSt, unRes, parser.ParseConsolidatedEntities, entity.EntityRecords)

	s.insert(ctx, indSt, unIndividuals.label, indRecords)
	s.insert(ctx, entSt, unEntities.label, entRecords)
}

func (s *Service) runProtected(ctx context.Context, stats *RunStats) {
	ofacSt := stats.Dataset(DatasetOFACSDN)
	indSt := stats.Dataset(DatasetUNIndividuals)
	entSt := stats.Dataset(DatasetUNEntities)

	ofacRes := s.download(ctx, "OFAC SDN", s.cfg.OFACSDNURL)
	ofacRecords := parseDataset(ctx, ofacSt, ofacRes, parser.ParseSDN, entity.SdnRecords)
	s.replace(ctx, ofacSt, ofacSDN.label, ofacRecords)

	unRes := s.download(ctx, "UN Consolidated", s.cfg.UNConsolidatedURL)
	indRecords := parseDataset(ctx, indSt, unRes, parser.ParseConsolidatedIndividuals, entity.IndividualRecords)
	entRecords := parseDataset(ctx, entSt, unRes, parser.ParseConsolidatedEntities, entity.EntityRecords)

	s.replace(ctx, indSt, unIndividuals.label, indRecords)
	s.replace(ctx, entSt, unEntities.label, entRecords)
}

// download fetches url and logs whether data was obtained.
func (s *Service) download(ctx context.Context, source, url string) fetcher.Result {
	res := s.fetcher.Fetch(ctx, url)
	logging.FromContext(ctx).Info(fmt.Sprintf("Downloaded %s XML data", source),
		slog.Bool("downloaded", res.OK()),
		slog.String("url", url),
		slog.Int("bytes", len(res.Body)))
	return res
}

// parseDataset parses the downloaded body and classifies the dataset.
// A failed download still goes through parse, which reports no data.
func parseDataset[T any](ctx context.Context, st *DatasetStats, res fetcher.Result, parse func([]byte) ([]T, error), toRecords func([]T) []entity.Record) []entity.Record {
	st.Downloaded = res.OK()

	items, err := parse(res.Body)
	st.Parsed = len(items)
	metrics.RecordParsed(string(st.Dataset), st.Parsed)

	if err != nil {
		logging.FromContext(ctx).Warn("failed to parse XML data",
			slog.String("dataset", string(st.Dataset)),
			slog.Int("bytes", len(res.Body)),
			slog.Any("error", err))
	}

	switch {
	case errors.Is(err, parser.ErrNoData):
		st.Outcome = OutcomeFailed
		st.Err = downloadError(res, err)
		metrics.RecordParseError(string(st.Dataset), "no_data")
	case err != nil:
		st.Outcome = OutcomeFailed
		st.Err = err
		metrics.RecordParseError(string(st.Dataset), "malformed")
	case len(items) == 0:
		st.Outcome = OutcomeEmpty
	default:
		st.Outcome = OutcomeLoaded
	}
	metrics.RecordDatasetOutcome(string(st.Dataset), st.Outcome.String())

	logging.FromContext(ctx).Debug("dataset parsed",
		slog.String("dataset", string(st.Dataset)),
		slog.String("outcome", st.Outcome.String()),
		slog.Int("records", st.Parsed))
	return toRecords(items)
}

func downloadError(res fetcher.Result, parseErr error) error {
	if res.Err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, res.URL, res.Err)
	}
	if !res.OK() {
		return fmt.Errorf("%w: %s", ErrDownloadFailed, res.URL)
	}
	return parseErr
}

func (s *Service) truncate(ctx context.Context, st *DatasetStats) {
	if err := s.loader.Truncate(ctx, st.Table); err != nil {
		st.LoadErr = err
		logging.FromContext(ctx).Error("Error truncating table",
			slog.String("table", st.Table),
			slog.Any("error", err))
	}
}

// insert appends records to a table emptied earlier in the run.
func (s *Service) insert(ctx context.Context, st *DatasetStats, label string, records []entity.Record) {
	n, err := s.loader.BulkInsert(ctx, st.Table, records)
	s.recordLoad(ctx, st, label, n, err)
}

// replace swaps the table contents for records, unless the dataset did not load.
func (s *Service) replace(ctx context.Context, st *DatasetStats, label string, records []entity.Record) {
	if st.Outcome != OutcomeLoaded {
		st.Skipped = true
		metrics.RecordDatasetOutcome(string(st.Dataset), "skipped")
		logging.FromContext(ctx).Warn("Skipping table load, existing rows kept",
			slog.String("table", st.Table),
			slog.String("dataset", string(st.Dataset)),
			slog.String("outcome", st.Outcome.String()))
		return
	}
	n, err := s.loader.Replace(ctx, st.Table, records)
	s.recordLoad(ctx, st, label, n, err)
}

func (s *Service) recordLoad(ctx context.Context, st *DatasetStats, label string, n int, err error) {
	logger := logging.FromContext(ctx)
	st.Loaded = n
	if err != nil {
		st.LoadErr = errors.Join(st.LoadErr, err)
		logger.Error("Error saving data to the database",
			slog.String("table", st.Table),
			slog.Any("error", err))
	}
	logger.Info(fmt.Sprintf("%d %s saved to the database", n, label),
		slog.String("table", st.Table),
		slog.Int("parsed", st.Parsed),
		slog.Int("saved", n))
}

func (s *Service) logSummary(logger *slog.Logger, stats *RunStats) {
	attrs := []any{
		slog.String("mode", string(stats.Mode)),
		slog.Int("tables_loaded", stats.TablesLoaded()),
		slog.Duration("duration", stats.Duration),
	}
	for _, ds := range stats.Datasets {
		attrs = append(attrs, slog.Group(string(ds.Dataset),
			slog.String("outcome", ds.Outcome.String()),
			slog.Int("parsed", ds.Parsed),
			slog.Int("saved", ds.Loaded),
			slog.Bool("skipped", ds.Skipped)))
	}

	if err := stats.Err(); err != nil {
		logger.Warn("sanctions sync finished with errors", append(attrs, slog.Any("error", err))...)
		return
	}
	logger.Info("sanctions sync finished", attrs...)
}
