package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// dataTypes are the values accepted by ?dataType=.
var dataTypes = []string{"config", "backup", "stats", "gtfs"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

func writeDebugData(w http.ResponseWriter, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       dumper.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data any
	var title string

	switch r.URL.Query().Get("dataType") {
	case "config":
		data = webUI.Store.Current()
		title = "Live Configuration"
	case "backup":
		if backup, ok := webUI.Store.Backup(); ok {
			data = backup
		} else {
			data = map[string]string{"backup": "none"}
		}
		title = "Configuration Backup"
	case "stats":
		data = webUI.Store.Stats()
		title = "Store Statistics"
	case "gtfs":
		if webUI.GtfsManager != nil {
			data = webUI.GtfsManager.Stats()
		} else {
			data = map[string]string{"gtfs": "not configured"}
		}
		title = "GTFS Stop Reference"
	default:
		data = map[string]string{
			"error": "Please use one of the following: config, backup, stats, gtfs.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
