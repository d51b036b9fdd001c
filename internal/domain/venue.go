package domain

import "strconv"

// Kind is the geometry kind of a source record as the interpreter reports it.
type Kind string

const (
	KindNode     Kind = "node"
	KindWay      Kind = "way"
	KindRelation Kind = "relation"
)

// Bounds is a viewport in degrees. South < North and West < East are assumed,
// the map widget supplies them.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Center is the representative point the interpreter emits for ways and relations.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawElement is one record of the interpreter's "elements" array.
type RawElement struct {
	Type   Kind              `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Venue is a normalized record with a usable coordinate.
type Venue struct {
	ID   int64             `json:"id"`
	Kind Kind              `json:"kind"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Key is the identity of a venue across fetches.
func (v Venue) Key() string {
	return string(v.Kind) + "-" + strconv.FormatInt(v.ID, 10)
}
