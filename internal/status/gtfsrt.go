package status

import (
	"net/http"
	"strconv"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/ptv"
)

// ptr returns a pointer to v
func ptr[T any](v T) *T { return &v }

// BuildFeed returns a GTFS-Realtime feed with one TripUpdate for the
// published departure, or no entities when none is published. The departure
// time is the anchor plus the published remaining seconds.
func BuildFeed(snap countdown.Snapshot, dep ptv.Departure, hasDeparture bool, stopID int, now time.Time) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: ptr("2.0"),
			Incrementality:      ptr(gtfs.FeedHeader_FULL_DATASET),
			Timestamp:           ptr(uint64(now.Unix())),
		},
	}

	remaining, ok := snap.Remaining()
	if !ok || !hasDeparture {
		return feed
	}
	feed.Header.Timestamp = ptr(uint64(snap.Anchor.Unix()))

	tripID := dep.RunRef
	if tripID == "" {
		tripID = "stop-" + strconv.Itoa(stopID)
	}
	trip := &gtfs.TripDescriptor{TripId: ptr(tripID)}
	if dep.RouteID != 0 {
		trip.RouteId = ptr(strconv.Itoa(dep.RouteID))
	}
	departs := snap.Anchor.Add(time.Duration(remaining) * time.Second)

	feed.Entity = []*gtfs.FeedEntity{{
		Id: ptr(tripID),
		TripUpdate: &gtfs.TripUpdate{
			Trip: trip,
			StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{{
				StopId:    ptr(strconv.Itoa(stopID)),
				Departure: &gtfs.TripUpdate_StopTimeEvent{Time: ptr(departs.Unix())},
			}},
		},
	}}
	return feed
}

// GetGTFSRealtime handles GET /gtfs-rt
// Returns the published departure as a GTFS-Realtime TripUpdate feed.
// ?format=text selects the protobuf text format.
func (h *Handler) GetGTFSRealtime(w http.ResponseWriter, r *http.Request) {
	dep, ok := h.cycles.LastDeparture()
	feed := BuildFeed(h.store.Read(), dep, ok, h.stopID, h.clock.Now())

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "binary":
		data, err = proto.Marshal(feed)
		contentType = "application/x-protobuf"
	case "text":
		data, err = prototext.Marshal(feed)
		contentType = "text/plain; charset=utf-8"
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unsupported format: " + format})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal GTFS-Realtime feed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to marshal feed"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
