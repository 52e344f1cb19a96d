package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/solarroi/cmd"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "INFO",
		},
		&cli.StringFlag{
			Name:    "database-url",
			EnvVars: []string{"DATABASE_URL"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "migrations-folder",
			EnvVars: []string{"MIGRATIONS_FOLDER"},
			Value:   "",
		},
	}

	app := &cli.App{
		Name:  "solar-roi",
		Usage: "calculate the return on investment of a PV system from retailer tariffs and inverter telemetry",
		Commands: []*cli.Command{
			{
				Name:   "roi",
				Usage:  "reconcile a date range and report daily ROI",
				Action: cmd.RoiCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "date to reconcile from, YYYY-MM-DD or now-X for X days ago",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "date to reconcile up to, defaults to today",
					},
					&cli.BoolFlag{
						Name:    "use-database",
						Aliases: []string{"d"},
						Usage:   "persist daily records to the database",
					},
					&cli.StringFlag{
						Name:    "mqtt-host",
						EnvVars: []string{"MQTT_HOST"},
						Usage:   "publish daily records to this MQTT broker",
					},
					&cli.StringFlag{
						Name:    "mqtt-user",
						EnvVars: []string{"MQTT_USER"},
					},
					&cli.StringFlag{
						Name:    "mqtt-pass",
						EnvVars: []string{"MQTT_PASS"},
					},
				}, commonFlags...),
			},
			{
				Name:   "forecast",
				Usage:  "fetch the solar generation forecast",
				Action: cmd.ForecastCommand,
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:    "use-database",
						Aliases: []string{"d"},
						Usage:   "persist forecast records to the database",
					},
					&cli.StringFlag{
						Name:    "schedule",
						EnvVars: []string{"FORECAST_SCHEDULE"},
						Usage:   "cron expression; keep fetching on this schedule instead of once",
					},
				}, commonFlags...),
			},
			{
				Name:   "report",
				Usage:  "print persisted daily records for a date range",
				Action: cmd.ReportCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "end",
						Aliases: []string{"e"},
					},
				}, commonFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
