// Package stops lists every stop of every route of one transport mode, so a
// stop id can be picked for the countdown.
package stops

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/train-countdown/countdown/internal/ptv"
)

// maxConcurrentRoutes bounds parallel stop lookups
const maxConcurrentRoutes = 4

// Catalog is the part of the timetable service the utility needs
type Catalog interface {
	Routes(ctx context.Context) ([]ptv.Route, error)
	StopsOnRoute(ctx context.Context, routeID int, routeType ptv.RouteType) ([]ptv.Stop, error)
}

// RouteStops is a route with the stops it serves
type RouteStops struct {
	Route ptv.Route
	Stops []ptv.Stop
}

// Collect fetches the routes of routeType and their stops, in route order.
// A route whose stops cannot be fetched is logged and left out.
func Collect(ctx context.Context, c Catalog, routeType ptv.RouteType) ([]RouteStops, error) {
	all, err := c.Routes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch routes: %w", err)
	}

	var routes []ptv.Route
	for _, r := range all {
		if r.RouteType == routeType {
			routes = append(routes, r)
		}
	}
	log.Info().Int("routes", len(routes)).Int("route_type", int(routeType)).Msg("Fetching stops for routes")

	results := make([]*RouteStops, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRoutes)

	for i, route := range routes {
		g.Go(func() error {
			log.Debug().Str("route", route.RouteName).Int("route_id", route.RouteID).Msg("Fetching stops for route")

			stops, err := c.StopsOnRoute(gctx, route.RouteID, routeType)
			if err != nil {
				log.Warn().Err(err).Str("route", route.RouteName).Int("route_id", route.RouteID).Msg("Failed to fetch stops for route")
				return nil
			}
			results[i] = &RouteStops{Route: route, Stops: stops}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]RouteStops, 0, len(results))
	for _, rs := range results {
		if rs != nil {
			out = append(out, *rs)
		}
	}
	return out, nil
}

// Write prints routes in the stop list format
func Write(w io.Writer, routes []RouteStops) error {
	bw := bufio.NewWriter(w)
	for _, rs := range routes {
		fmt.Fprintf(bw, "Route: %s\n", rs.Route.RouteName)
		for _, s := range rs.Stops {
			fmt.Fprintf(bw, "  - %s (ID: %d)\n", s.StopName, s.StopID)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteFile writes the stop list to path, replacing it atomically
func WriteFile(path string, routes []RouteStops) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stops-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := Write(tmp, routes); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write stop list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}
