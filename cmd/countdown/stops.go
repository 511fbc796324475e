package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/train-countdown/countdown/internal/config"
	"github.com/train-countdown/countdown/internal/ptv"
	"github.com/train-countdown/countdown/internal/stops"
)

func stopsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stops",
		Usage: "write every stop of every route of one transport mode to a file",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "route-type",
				Usage: "route type to list (0 train, 1 tram, 2 bus, 3 vline, 4 night coach)",
				Value: int(ptv.RouteTypeTrain),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "file to write",
				Value:   "train_stop_ids.txt",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if err := cfg.ValidateCredentials(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}

			client := ptv.NewClient(cfg.BaseURL, cfg.DevID, cfg.APIKey, cfg.RequestTimeout)
			routes, err := stops.Collect(c.Context, client, ptv.RouteType(c.Int("route-type")))
			if err != nil {
				return err
			}

			output := c.String("output")
			if err := stops.WriteFile(output, routes); err != nil {
				return err
			}
			log.Info().Str("output", output).Int("routes", len(routes)).Msg("Data successfully saved")
			return nil
		},
	}
}
