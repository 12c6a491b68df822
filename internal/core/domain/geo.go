package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a geographic bounding rectangle given by its
// north-east and south-west corners, used as a map viewport.
type Bounds struct {
	NorthEast GeoPoint `json:"northeast"`
	SouthWest GeoPoint `json:"southwest"`
}

// Contains reports whether p lies within the rectangle.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lon >= b.SouthWest.Lon && p.Lon <= b.NorthEast.Lon
}
