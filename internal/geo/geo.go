// Package geo holds the geometry primitives used by the detection engine:
// great-circle distance, circle containment and planar polygon containment.
package geo

import "math"

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance between two coordinates in
// meters. Accurate for the sub-100 km separations this engine deals with.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// CircleContains reports whether p lies within radiusM meters of center.
func CircleContains(p, center Point, radiusM float64) bool {
	return Haversine(p.Lat, p.Lon, center.Lat, center.Lon) <= radiusM
}

// PolygonContains reports whether p lies inside the polygon using the winding
// number over its edges. The test treats latitude as the x axis and longitude
// as the y axis of a local plane; this is a small-area planar approximation,
// not a geodesic test, and callers depend on that exact behavior. Polygons
// with fewer than 3 vertices contain nothing.
func PolygonContains(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	winding := 0
	for i := range polygon {
		a := polygon[i]
		b := polygon[(i+1)%len(polygon)]

		if a.Lon <= p.Lon {
			if b.Lon > p.Lon && isLeft(a, b, p) > 0 {
				winding++
			}
		} else {
			if b.Lon <= p.Lon && isLeft(a, b, p) < 0 {
				winding--
			}
		}
	}

	return winding != 0
}

// isLeft returns >0 when p is left of the directed edge a→b, <0 when right,
// 0 when collinear, in the (lat, lon) plane.
func isLeft(a, b, p Point) float64 {
	return (b.Lat-a.Lat)*(p.Lon-a.Lon) - (p.Lat-a.Lat)*(b.Lon-a.Lon)
}
