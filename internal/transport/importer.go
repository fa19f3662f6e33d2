package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/ironpinguin/departure-monitor-sub000/internal/export"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/preview"
	"github.com/ironpinguin/departure-monitor-sub000/internal/validation"
)

// Import sources recorded in logs and metrics.
const (
	SourceFile      = "file"
	SourceText      = "text"
	SourceURL       = "url"
	SourceClipboard = "clipboard"
	SourceValue     = "value"
)

// Import outcomes recorded in logs and metrics.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder receives import telemetry. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordValidation(ctx context.Context, source string, result models.ValidationResult)
	RecordImport(ctx context.Context, source, outcome string, elapsed time.Duration)
}

// ImportOptions tunes one import.
type ImportOptions struct {
	// Checks defaults to validation.DefaultContext().
	Checks *validation.Context
	// ApplyDefaults fills missing stop visibility and position before
	// validation.
	ApplyDefaults bool
	// Current is the live configuration the preview is computed against.
	Current *models.AppConfig
	// Source overrides the source label.
	Source string
}

// ImportOutcome is the result of the pipeline. Export and Preview are set
// only when Result is valid. Err holds the boundary error, if any, that
// Result was translated from.
type ImportOutcome struct {
	Result  models.ValidationResult `json:"result"`
	Export  *models.ConfigExport    `json:"export,omitempty"`
	Preview *models.ImportPreview   `json:"preview,omitempty"`
	Err     error                   `json:"-"`
}

// Accepted reports whether the import can be applied.
func (o ImportOutcome) Accepted() bool {
	return o.Result.IsValid && o.Export != nil
}

type Importer struct {
	validator *validation.Validator
	limits    Limits
	logger    *slog.Logger
	recorder  Recorder
	client    *http.Client
}

type ImporterOption func(*Importer)

func WithValidator(v *validation.Validator) ImporterOption {
	return func(i *Importer) {
		if v != nil {
			i.validator = v
		}
	}
}

func WithLimits(l Limits) ImporterOption {
	return func(i *Importer) { i.limits = l }
}

func WithLogger(l *slog.Logger) ImporterOption {
	return func(i *Importer) { i.logger = l }
}

func WithRecorder(r Recorder) ImporterOption {
	return func(i *Importer) { i.recorder = r }
}

func WithHTTPClient(c *http.Client) ImporterOption {
	return func(i *Importer) { i.client = c }
}

func NewImporter(opts ...ImporterOption) *Importer {
	i := &Importer{
		validator: validation.New(),
		limits:    DefaultLimits(),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Limits returns the file limits the importer enforces.
func (i *Importer) Limits() Limits {
	return i.limits
}

// ImportFile runs file checks, text decoding and the rest of the pipeline.
func (i *Importer) ImportFile(ctx context.Context, f File, opts ImportOptions) ImportOutcome {
	return i.run(ctx, SourceFile, opts, func() (any, error) {
		if err := CheckFile(f.Name, f.MIMEType, f.Size, i.limits); err != nil {
			return nil, err
		}
		if f.Body == nil {
			return nil, ErrEmptyFile
		}
		text, err := ReadText(ctx, f.Body, i.limits)
		if err != nil {
			return nil, err
		}
		return ParseJSON(text)
	})
}

// ImportText imports pasted or already decoded JSON text.
func (i *Importer) ImportText(ctx context.Context, text string, opts ImportOptions) ImportOutcome {
	return i.run(ctx, SourceText, opts, func() (any, error) {
		if int64(len(text)) > i.limits.maxSize() {
			return nil, ErrFileTooLarge
		}
		if !utf8.ValidString(text) {
			return nil, ErrInvalidEncoding
		}
		return ParseJSON(text)
	})
}

// ImportURL fetches an export over http or https and imports it.
func (i *Importer) ImportURL(ctx context.Context, rawURL string, opts ImportOptions) ImportOutcome {
	return i.run(ctx, SourceURL, opts, func() (any, error) {
		text, err := FetchURL(logging.WithLogger(ctx, i.logger), i.client, rawURL, i.limits)
		if err != nil {
			return nil, err
		}
		return ParseJSON(text)
	})
}

// ImportValue imports an already parsed JSON tree.
func (i *Importer) ImportValue(ctx context.Context, value any, opts ImportOptions) ImportOutcome {
	return i.run(ctx, SourceValue, opts, func() (any, error) {
		return value, nil
	})
}

func (i *Importer) run(ctx context.Context, source string, opts ImportOptions, load func() (any, error)) ImportOutcome {
	if opts.Source != "" {
		source = opts.Source
	}
	start := time.Now()

	value, err := load()
	if err != nil {
		return i.fail(ctx, source, start, err)
	}

	if opts.ApplyDefaults {
		value = validation.NormalizeStops(value)
	}

	checks := validation.DefaultContext()
	if opts.Checks != nil {
		checks = *opts.Checks
	}

	result := i.validator.Validate(value, checks)
	logging.LogValidationResult(i.logger, source, result)
	if i.recorder != nil {
		i.recorder.RecordValidation(ctx, source, result)
	}
	if !result.IsValid {
		return i.finish(ctx, source, start, ImportOutcome{Result: result})
	}

	typed, errs := validation.Decode(value)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		result.IsValid = false
		result.IsCompatible = false
		return i.finish(ctx, source, start, ImportOutcome{Result: result})
	}

	if err := export.ValidateExportData(typed); err != nil {
		rejected := ResultFromError(err)
		result.Errors = append(result.Errors, rejected.Errors...)
		result.IsValid = false
		result.IsCompatible = false
		return i.finish(ctx, source, start, ImportOutcome{Result: result, Err: err})
	}

	p := preview.CreatePreview(&typed, opts.Current)
	return i.finish(ctx, source, start, ImportOutcome{Result: result, Export: &typed, Preview: &p})
}

func (i *Importer) fail(ctx context.Context, source string, start time.Time, err error) ImportOutcome {
	outcome := ImportOutcome{Result: ResultFromError(err), Err: err}
	logging.LogError(i.logger, "config_import_failed", err,
		slog.String("source", source),
		slog.String("component", "importer"))
	if i.recorder != nil {
		i.recorder.RecordImport(ctx, source, OutcomeFailed, time.Since(start))
	}
	return outcome
}

func (i *Importer) finish(ctx context.Context, source string, start time.Time, outcome ImportOutcome) ImportOutcome {
	status := OutcomeAccepted
	if !outcome.Accepted() {
		status = OutcomeRejected
	}
	elapsed := time.Since(start)

	attrs := []slog.Attr{
		slog.String("source", source),
		slog.String("outcome", status),
		slog.Duration("duration", elapsed),
	}
	if outcome.Preview != nil {
		attrs = append(attrs,
			slog.Int("stops_added", outcome.Preview.EstimatedChanges.StopsAdded),
			slog.Int("stops_updated", outcome.Preview.EstimatedChanges.StopsUpdated),
			slog.Int("conflicts", len(outcome.Preview.Conflicts)))
	}
	logging.LogOperation(i.logger, "config_import", attrs...)

	if i.recorder != nil {
		i.recorder.RecordImport(ctx, source, status, elapsed)
	}
	return outcome
}

// IsCanceled reports whether an outcome failed because its context ended or
// its time budget ran out.
func (o ImportOutcome) IsCanceled() bool {
	return errors.Is(o.Err, ErrImportCanceled)
}
