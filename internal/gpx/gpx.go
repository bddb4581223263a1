// Package gpx extracts track points from GPX route descriptions.
package gpx

import (
	"encoding/xml"

	"github.com/andreee-ff/saferide-go/internal/spatial"
)

type gpxFile struct {
	Tracks []struct {
		Segments []struct {
			Points []trkpt `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

type trkpt struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// Parse extracts the ordered track point sequence from raw GPX data.
// Malformed input yields an empty sequence, never an error: a broken route
// overlay must not abort rendering of the live map.
func Parse(data []byte) []spatial.Point {
	var doc gpxFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var points []spatial.Point
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				if pt.Lat == 0 && pt.Lon == 0 {
					continue
				}
				points = append(points, spatial.Point{Lat: pt.Lat, Lon: pt.Lon})
			}
		}
	}

	return points
}

// Distance returns the total track length in meters
func Distance(data []byte) float64 {
	return spatial.PathLength(Parse(data))
}
