package telemetry

import (
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"bus-locator/internal/model"
)

// SiriXmlSource picks one vehicle out of a SIRI VehicleMonitoring XML feed.
type SiriXmlSource struct {
	httpFeed
	vehicleRef string
}

func NewSiriXmlSource(url, vehicleRef string, timeout time.Duration) *SiriXmlSource {
	return &SiriXmlSource{
		httpFeed:   newHTTPFeed("siri xml", url, timeout),
		vehicleRef: vehicleRef,
	}
}

// Fetch streams the document and stops at the first VehicleActivity whose
// VehicleRef matches. Namespaces are ignored.
func (s *SiriXmlSource) Fetch(ctx context.Context) (model.LocationSample, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return model.LocationSample{}, err
	}
	defer resp.Body.Close()
	dec := xml.NewDecoder(resp.Body)

	var (
		inVA, inLoc    bool
		curID          string
		curLat, curLon string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.LocationSample{}, err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "VehicleActivity":
				inVA = true
				curID, curLat, curLon = "", "", ""
			case "VehicleLocation":
				inLoc = inVA
			case "VehicleRef", "Latitude", "Longitude":
				if !inVA {
					continue
				}
				var v string
				if err := dec.DecodeElement(&v, &se); err != nil {
					return model.LocationSample{}, err
				}
				switch {
				case se.Name.Local == "VehicleRef":
					curID = v
				case se.Name.Local == "Latitude" && inLoc:
					curLat = v
				case se.Name.Local == "Longitude" && inLoc:
					curLon = v
				}
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "VehicleLocation":
				inLoc = false
			case "VehicleActivity":
				inVA = false
				if curID != s.vehicleRef {
					continue
				}
				if lat, lon, ok := parseLatLon(curLat, curLon); ok {
					return model.LocationSample{Latitude: lat, Longitude: lon}, nil
				}
			}
		}
	}
	return model.LocationSample{}, ErrNoPosition
}

func parseLatLon(lat, lon string) (float64, float64, bool) {
	lf, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return 0, 0, false
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return 0, 0, false
	}
	return lf, lo, true
}
