package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ironpinguin/departure-monitor-sub000/internal/i18n"
	"github.com/ironpinguin/departure-monitor-sub000/internal/logging"
	"github.com/ironpinguin/departure-monitor-sub000/internal/models"
	"github.com/ironpinguin/departure-monitor-sub000/internal/store"
	"github.com/ironpinguin/departure-monitor-sub000/internal/transport"
	"github.com/ironpinguin/departure-monitor-sub000/internal/utils"
)

// defaultUploadName is used for raw request bodies without a filename.
const defaultUploadName = "import.json"

type previewEntry struct {
	Result  models.ValidationResult `json:"result"`
	Preview *models.ImportPreview   `json:"preview"`
}

type importEntry struct {
	Result  models.ValidationResult `json:"result"`
	Preview *models.ImportPreview   `json:"preview"`
	Config  models.AppConfig        `json:"config"`
}

func (api *RestAPI) validateHandler(w http.ResponseWriter, r *http.Request) {
	outcome := api.runImport(r, nil)
	switch {
	case outcome.IsCanceled():
		api.canceledResponse(w, r)
	case !outcome.Accepted():
		api.rejectedResponse(w, r, outcome.Result, outcome.Result)
	default:
		api.sendEntry(w, r, outcome.Result)
	}
}

func (api *RestAPI) previewHandler(w http.ResponseWriter, r *http.Request) {
	current := api.Store.Current()
	outcome := api.runImport(r, &current)
	switch {
	case outcome.IsCanceled():
		api.canceledResponse(w, r)
	case !outcome.Accepted():
		api.rejectedResponse(w, r, outcome.Result, previewEntry{Result: outcome.Result})
	default:
		api.sendEntry(w, r, previewEntry{Result: outcome.Result, Preview: outcome.Preview})
	}
}

func (api *RestAPI) importHandler(w http.ResponseWriter, r *http.Request) {
	strategy, err := store.ParseStrategy(r.URL.Query().Get("strategy"))
	if err != nil {
		api.badRequestResponse(w, r, err)
		return
	}

	current := api.Store.Current()
	outcome := api.runImport(r, &current)
	switch {
	case outcome.IsCanceled():
		api.canceledResponse(w, r)
		return
	case !outcome.Accepted():
		api.rejectedResponse(w, r, outcome.Result, importEntry{Result: outcome.Result})
		return
	}

	applied, err := api.Store.Apply(outcome.Export, strategy)
	if errors.Is(err, store.ErrInvalidImport) {
		api.sendError(w, r, http.StatusUnprocessableEntity, err.Error(),
			map[string]any{"entry": importEntry{Result: outcome.Result, Preview: outcome.Preview}})
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendEntry(w, r, importEntry{Result: outcome.Result, Preview: outcome.Preview, Config: applied})
}

// runImport reads the payload from ?url=, a multipart "file" field or the
// raw request body, in that order, and runs it through the importer within
// the request budget. Uploads are buffered first so the import job never
// touches the request after the handler returns.
func (api *RestAPI) runImport(r *http.Request, current *models.AppConfig) transport.ImportOutcome {
	opts := transport.ImportOptions{
		Current:       current,
		ApplyDefaults: utils.QueryBool(r, "applyDefaults", false),
	}

	if rawURL := r.URL.Query().Get("url"); rawURL != "" {
		return <-transport.ImportAsync(r.Context(), importBudget, func(ctx context.Context) transport.ImportOutcome {
			return api.Importer.ImportURL(ctx, rawURL, opts)
		})
	}

	upload, err := api.readUpload(r)
	if err != nil {
		return transport.ImportOutcome{Result: transport.ResultFromError(err), Err: err}
	}
	return <-transport.ImportAsync(r.Context(), importBudget, func(ctx context.Context) transport.ImportOutcome {
		return api.Importer.ImportFile(ctx, upload, opts)
	})
}

// readUpload buffers the multipart "file" field or the raw request body.
func (api *RestAPI) readUpload(r *http.Request) (transport.File, error) {
	limits := api.Importer.Limits()

	if isMultipart(r) {
		file, header, err := r.FormFile(transport.FileField)
		if err != nil {
			return transport.File{}, fmt.Errorf("%w: %w", transport.ErrEmptyFile, err)
		}
		defer logging.SafeCloseWithLogging(file, logging.FromContext(r.Context()), "multipart_upload")
		return transport.File{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Body:     file,
		}.Buffer(limits)
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = defaultUploadName
	}
	return transport.File{
		Name:     name,
		MIMEType: r.Header.Get("Content-Type"),
		Size:     r.ContentLength,
		Body:     r.Body,
	}.Buffer(limits)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// localize renders a validation error in the language from ?lang=, falling
// back to the language of the live configuration.
func (api *RestAPI) localize(r *http.Request, e models.ValidationError) string {
	lang := models.Language(r.URL.Query().Get("lang"))
	return i18n.ErrorMessage(api.Translator(lang), e)
}
