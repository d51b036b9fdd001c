package domain

// Icon names the marker appearance the renderer should use.
const IconWheelchair = "wheelchair"

// Popup is the content bound to a marker.
type Popup struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Accessibility    string `json:"accessibility"`
	Description      string `json:"description,omitempty"`
	Ramp             bool   `json:"ramp"`
	AccessibleToilet bool   `json:"accessible_toilet"`
	ElevatorLikely   bool   `json:"elevator_likely"`
	Permalink        string `json:"permalink"`
}

// Marker is what the cluster renderer consumes.
type Marker struct {
	Key   string  `json:"key"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Icon  string  `json:"icon"`
	Popup Popup   `json:"popup"`
}
