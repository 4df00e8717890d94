// Package geo holds the coordinate math shared by the simulation
// engines. All projections use a local equirectangular approximation,
// which is adequate at the tens-of-km scale this tool targets; the
// error grows with distance and latitude and is a documented limitation.
package geo

import "math"

const (
	// EarthRadiusKm is the mean earth radius.
	EarthRadiusKm = 6371.0

	// KmPerDegreeLat is the approximate north-south length of one
	// degree of latitude.
	KmPerDegreeLat = 111.32
)

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := Radians(lat1)
	rlat2 := Radians(lat2)
	dlat := Radians(lat2 - lat1)
	dlon := Radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return EarthRadiusKm * c
}

// Destination returns the point reached by travelling distanceKm along
// bearingDeg (degrees clockwise from north) from the start coordinate,
// using the equirectangular approximation.
func Destination(lat, lon, bearingDeg, distanceKm float64) (float64, float64) {
	b := Radians(bearingDeg)
	dLat := distanceKm * math.Cos(b) / KmPerDegreeLat
	dLon := distanceKm * math.Sin(b) / (KmPerDegreeLat * math.Cos(Radians(lat)))
	return lat + dLat, lon + dLon
}

// DownwindBearing converts a meteorological wind direction (the
// direction the wind blows from) into the bearing the wind blows
// toward.
func DownwindBearing(windFromDeg float64) float64 {
	return math.Mod(windFromDeg+180, 360)
}

// AngularDiff returns the smallest absolute difference between two
// bearings, in [0, 180].
func AngularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PolygonAreaKm2 computes the area of a lat/lon polygon via the
// shoelace formula, scaling degree offsets to kilometers at the
// polygon's mean latitude. The ring may be open or closed.
func PolygonAreaKm2(lats, lons []float64) float64 {
	n := len(lats)
	if n < 3 || len(lons) != n {
		return 0
	}

	var meanLat float64
	for _, lat := range lats {
		meanLat += lat
	}
	meanLat /= float64(n)
	kmPerDegLon := KmPerDegreeLat * math.Cos(Radians(meanLat))

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi := lons[i] * kmPerDegLon
		yi := lats[i] * KmPerDegreeLat
		xj := lons[j] * kmPerDegLon
		yj := lats[j] * KmPerDegreeLat
		sum += xi*yj - xj*yi
	}
	return math.Abs(sum) / 2
}
