package gtfs

import (
	"sort"

	"github.com/jamespfennell/gtfs"
)

// StopInfo is the public view of a GTFS stop.
type StopInfo struct {
	ID        string   `json:"id"`
	Code      string   `json:"code,omitempty"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lon,omitempty"`
}

// StopDirectory resolves transit stop identifiers by GTFS stop_id or
// stop_code. It is immutable after construction.
type StopDirectory struct {
	byID   map[string]StopInfo
	byCode map[string]string
}

func NewStopDirectory(stops []gtfs.Stop) *StopDirectory {
	d := &StopDirectory{
		byID:   make(map[string]StopInfo, len(stops)),
		byCode: make(map[string]string),
	}
	for _, stop := range stops {
		if stop.Id == "" {
			continue
		}
		d.byID[stop.Id] = StopInfo{
			ID:        stop.Id,
			Code:      stop.Code,
			Name:      stop.Name,
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
		}
		if stop.Code != "" {
			if _, taken := d.byCode[stop.Code]; !taken {
				d.byCode[stop.Code] = stop.Id
			}
		}
	}
	return d
}

// Has reports whether stopID is a known stop_id or stop_code.
func (d *StopDirectory) Has(stopID string) bool {
	_, ok := d.Lookup(stopID)
	return ok
}

// Lookup prefers an exact stop_id match over a stop_code match.
func (d *StopDirectory) Lookup(stopID string) (StopInfo, bool) {
	if d == nil {
		return StopInfo{}, false
	}
	if stop, ok := d.byID[stopID]; ok {
		return stop, true
	}
	if id, ok := d.byCode[stopID]; ok {
		return d.byID[id], true
	}
	return StopInfo{}, false
}

func (d *StopDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byID)
}

// IDs returns every stop_id in sorted order.
func (d *StopDirectory) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
