package ptv

import "time"

// RouteType identifies a transport mode in the timetable API
type RouteType int

const (
	RouteTypeTrain      RouteType = 0
	RouteTypeTram       RouteType = 1
	RouteTypeBus        RouteType = 2
	RouteTypeVLine      RouteType = 3
	RouteTypeNightCoach RouteType = 4
)

// Departure is one scheduled vehicle departure as reported by the service
type Departure struct {
	StopID             int        `json:"stop_id"`
	RouteID            int        `json:"route_id"`
	RunRef             string     `json:"run_ref"`
	DirectionID        int        `json:"direction_id"`
	ScheduledDeparture *time.Time `json:"scheduled_departure_utc"`
	EstimatedDeparture *time.Time `json:"estimated_departure_utc"`
	PlatformNumber     *string    `json:"platform_number"`
}

// DepartureTime returns the estimated departure if the service has one,
// falling back to the timetabled departure.
func (d Departure) DepartureTime() (time.Time, bool) {
	if d.EstimatedDeparture != nil {
		return d.EstimatedDeparture.UTC(), true
	}
	if d.ScheduledDeparture != nil {
		return d.ScheduledDeparture.UTC(), true
	}
	return time.Time{}, false
}

// Platform returns the platform number or an empty string
func (d Departure) Platform() string {
	if d.PlatformNumber == nil {
		return ""
	}
	return *d.PlatformNumber
}

// DeparturesQuery selects departures for a single stop
type DeparturesQuery struct {
	StopID     int
	RouteType  RouteType
	MaxResults int
}

// Route is an entry of the /v3/routes listing
type Route struct {
	RouteID     int       `json:"route_id"`
	RouteName   string    `json:"route_name"`
	RouteNumber string    `json:"route_number"`
	RouteType   RouteType `json:"route_type"`
}

// Stop is an entry of the /v3/stops/route listing
type Stop struct {
	StopID   int    `json:"stop_id"`
	StopName string `json:"stop_name"`
}

type departuresResponse struct {
	Departures []Departure `json:"departures"`
}

type routesResponse struct {
	Routes []Route `json:"routes"`
}

type stopsResponse struct {
	Stops []Stop `json:"stops"`
}
