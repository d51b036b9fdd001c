package app

import "accessible_map/internal/domain"

// Normalize maps raw interpreter records to venues. Direct lat/lon wins over the
// centroid, each axis resolved on its own; a missing axis becomes 0. Records that
// end up exactly at (0, 0) are treated as having no geometry and dropped.
// Order is preserved and duplicate keys are kept.
func Normalize(raw []domain.RawElement) []domain.Venue {
	out := make([]domain.Venue, 0, len(raw))
	for _, el := range raw {
		lat, lon := coords(el)
		if lat == 0 && lon == 0 {
			continue
		}
		out = append(out, domain.Venue{
			ID:   el.ID,
			Kind: el.Type,
			Lat:  lat,
			Lon:  lon,
			Tags: el.Tags,
		})
	}
	return out
}

func coords(el domain.RawElement) (lat, lon float64) {
	switch {
	case el.Lat != nil:
		lat = *el.Lat
	case el.Center != nil:
		lat = el.Center.Lat
	}
	switch {
	case el.Lon != nil:
		lon = *el.Lon
	case el.Center != nil:
		lon = el.Center.Lon
	}
	return lat, lon
}
