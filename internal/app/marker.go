package app

import (
	"strconv"
	"strings"

	"accessible_map/internal/domain"
)

const unnamedVenue = "Unnamed Venue"

var categoryOrder = []string{"amenity", "shop", "tourism", "leisure"}

// NewMarker builds the renderer-facing marker and popup for v.
func NewMarker(v domain.Venue, permalinkBase string) domain.Marker {
	return domain.Marker{
		Key:   v.Key(),
		Lat:   v.Lat,
		Lon:   v.Lon,
		Icon:  domain.IconWheelchair,
		Popup: NewPopup(v, permalinkBase),
	}
}

// NewMarkers maps venues in order.
func NewMarkers(vs []domain.Venue, permalinkBase string) []domain.Marker {
	out := make([]domain.Marker, len(vs))
	for i, v := range vs {
		out[i] = NewMarker(v, permalinkBase)
	}
	return out
}

func NewPopup(v domain.Venue, permalinkBase string) domain.Popup {
	t := v.Tags
	name := t["name"]
	if name == "" {
		name = unnamedVenue
	}
	category := "N/A"
	for _, k := range categoryOrder {
		if c := t[k]; c != "" {
			category = c
			break
		}
	}
	return domain.Popup{
		Name:             name,
		Category:         category,
		Accessibility:    t["wheelchair"],
		Description:      t["wheelchair:description"],
		Ramp:             t["ramp:wheelchair"] == "yes",
		AccessibleToilet: t["toilets:wheelchair"] == "yes",
		ElevatorLikely:   t["building:levels"] != "",
		Permalink:        Permalink(permalinkBase, v.Kind, v.ID),
	}
}

// Permalink is <base>/<kind>/<id>.
func Permalink(base string, k domain.Kind, id int64) string {
	return strings.TrimRight(base, "/") + "/" + string(k) + "/" + strconv.FormatInt(id, 10)
}
