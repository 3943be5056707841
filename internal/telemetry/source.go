// Package telemetry fetches the live position of one vehicle and polls it on
// a fixed interval.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bus-locator/internal/model"
)

// ErrNoPosition is returned when a response carries no usable coordinates.
// Pollers drop it without logging a failure.
var ErrNoPosition = errors.New("telemetry: response has no position")

// StatusError reports a non-2xx telemetry response.
type StatusError struct {
	Feed string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http status: %d", e.Feed, e.Code)
}

// Source fetches the current vehicle position.
type Source interface {
	Fetch(ctx context.Context) (model.LocationSample, error)
}

type httpFeed struct {
	name       string
	url        string
	httpClient *http.Client
}

func newHTTPFeed(name, url string, timeout time.Duration) httpFeed {
	return httpFeed{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// get issues the request and returns the response when the status is 2xx.
// The caller closes the body.
func (f httpFeed) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Feed: f.name, Code: resp.StatusCode}
	}
	return resp, nil
}

// Feed formats accepted by NewSource.
const (
	FormatLocation = "json"
	FormatGtfsRt   = "gtfsrt"
	FormatSiriJson = "siri-json"
	FormatSiriXml  = "siri-xml"
)

// NewSource builds the Source for format. For FormatLocation url is the
// telemetry base URL; for the feed formats it is the feed URL itself.
func NewSource(format, url, vehicleRef string, timeout time.Duration) (Source, error) {
	switch format {
	case FormatLocation, "":
		return NewLocationSource(url, timeout)
	case FormatGtfsRt:
		return NewGtfsRtSource(url, vehicleRef, timeout), nil
	case FormatSiriJson:
		return NewSiriJsonSource(url, vehicleRef, timeout), nil
	case FormatSiriXml:
		return NewSiriXmlSource(url, vehicleRef, timeout), nil
	default:
		return nil, fmt.Errorf("telemetry: unknown feed format %q", format)
	}
}
