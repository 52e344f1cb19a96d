package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/solarroi/internal/pkg/config"
	"github.com/anicoll/solarroi/internal/pkg/contxt"
	"github.com/anicoll/solarroi/internal/pkg/database"
	"github.com/anicoll/solarroi/internal/pkg/database/migration"
	"github.com/anicoll/solarroi/internal/pkg/givenergy"
	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/internal/pkg/mqtt"
	"github.com/anicoll/solarroi/internal/pkg/octopus"
	"github.com/anicoll/solarroi/internal/pkg/publisher"
	"github.com/anicoll/solarroi/internal/pkg/roi"
	"github.com/anicoll/solarroi/internal/pkg/solcast"
	"github.com/anicoll/solarroi/pkg/urlcache"
	"github.com/anicoll/solarroi/pkg/utils"
)

const runTimeout = 30 * time.Minute

var errNoForecasts = errors.New("no forecast records returned")

var (
	dateRe = regexp.MustCompile(`^2[0-9]{3}-[0-1][0-9]-[0-3][0-9]$`)
	nowRe  = regexp.MustCompile(`^now-(?P<days>[0-9]+)$`)
)

// parseDateRange validates the start/end arguments. start accepts either an
// ISO date or now-X for X days ago; an empty end defaults to today.
func parseDateRange(startArg, endArg string, now time.Time) (start, end string, err error) {
	today := now.Format(time.DateOnly)

	end = today
	if endArg != "" {
		if !dateRe.MatchString(endArg) {
			return "", "", fmt.Errorf("invalid end date: %s", endArg)
		}
		end = endArg
	}

	if match := nowRe.FindStringSubmatch(startArg); match != nil {
		minusDays, _ := strconv.Atoi(match[1])
		start = now.AddDate(0, 0, -minusDays).Format(time.DateOnly)
	} else {
		if !dateRe.MatchString(startArg) {
			return "", "", fmt.Errorf("invalid start date: %s", startArg)
		}
		start = startArg
	}

	if end < start {
		return "", "", fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return start, end, nil
}

func buildConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DatabaseURL = ctx.String("database-url")
	cfg.MigrationsFolder = ctx.String("migrations-folder")
	cfg.LogLevel = ctx.String("log-level")
	if host := ctx.String("mqtt-host"); host != "" {
		cfg.Mqtt.Host = host
	}
	if user := ctx.String("mqtt-user"); user != "" {
		cfg.Mqtt.Username = user
	}
	if pass := ctx.String("mqtt-pass"); pass != "" {
		cfg.Mqtt.Password = pass
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = parsed
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.Database, error) {
	if cfg.MigrationsFolder != "" {
		if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return database.NewDatabase(conn), nil
}

func newMqttSink(cfg *config.MqttConfig) (*mqtt.Service, error) {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Host).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password)
	sink := mqtt.New(paho_mqtt.NewClient(opts))
	if err := sink.Connect(); err != nil {
		return nil, err
	}
	return sink, nil
}

// RoiCommand reconciles the date range against the retailer and inverter
// APIs, prints the ROI summary and optionally publishes per-day records.
func RoiCommand(cliCtx *cli.Context) error {
	cfg, err := buildConfig(cliCtx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	start, end, err := parseDateRange(cliCtx.String("start"), cliCtx.String("end"), time.Now())
	if err != nil {
		return err
	}

	ctx := contxt.NewContext(runTimeout)

	octoClient := octopus.New(&cfg.Octopus, octopus.WithCache(urlcache.New()))
	reconciler := octopus.NewReconciler(octoClient, octopus.NewAligner(octoClient, logger), logger)
	givClient := givenergy.New(&cfg.GivEnergy)

	if cliCtx.Bool("use-database") {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := publisher.Register("postgres", db); err != nil {
			return err
		}
	}
	if cfg.Mqtt.Host != "" {
		sink, err := newMqttSink(&cfg.Mqtt)
		if err != nil {
			return err
		}
		if err := publisher.Register("mqtt", sink); err != nil {
			return err
		}
	}

	return runRoi(ctx, octoClient, reconciler, givClient, start, end, logger, os.Stdout)
}

func runRoi(ctx context.Context, accounts accountService, reconciler reconcilerService, telemetry telemetryService, start, end string, logger *zap.Logger, out io.Writer) error {
	startDay, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return err
	}
	endDay, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return err
	}

	logger.Debug("querying retailer agreements")
	importMeter, exportMeter, err := accounts.Account(ctx)
	if err != nil {
		return err
	}

	var importRec, exportRec *octopus.Reconciliation
	if importMeter != nil {
		if importRec, err = reconciler.Reconcile(ctx, importMeter, startDay, endDay); err != nil {
			return err
		}
	}
	if exportMeter != nil {
		if exportRec, err = reconciler.Reconcile(ctx, exportMeter, startDay, endDay); err != nil {
			return err
		}
	}

	logger.Debug("querying inverter telemetry")
	usage, err := telemetry.EnergyFlows(ctx, start, end)
	if err != nil {
		return err
	}

	records, summary, err := roi.Aggregate(usage, importRec, exportRec, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ROI: £%.2f for %d days\n", summary.Roi, summary.Days)
	fmt.Fprintf(out, "ROI per day: £%.2f\n", summary.RoiPerDay)

	return publisher.PublishDaily(ctx, records)
}

// ForecastCommand fetches the generation forecast once, or on a cron
// schedule when --schedule is given.
func ForecastCommand(cliCtx *cli.Context) error {
	cfg, err := buildConfig(cliCtx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client := solcast.New(&cfg.Solcast)

	var store storageService
	if cliCtx.Bool("use-database") {
		db, err := openDatabase(contxt.NewContext(runTimeout), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	schedule := cliCtx.String("schedule")
	if schedule == "" {
		return runForecast(contxt.NewContext(runTimeout), client, store, logger, os.Stdout)
	}
	return runForecastScheduled(cliCtx.Context, client, store, schedule, logger)
}

func runForecastScheduled(ctx context.Context, forecasts forecastService, store storageService, schedule string, logger *zap.Logger) error {
	errorChan := make(chan error, 100)

	collect := func() {
		if err := runForecast(contxt.NewContext(runTimeout), forecasts, store, logger, os.Stdout); err != nil {
			errorChan <- err
			return
		}
		if store != nil {
			if err := store.Cleanup(context.Background()); err != nil {
				errorChan <- err
			}
		}
	}
	collect()

	c := cron.New()
	if _, err := c.AddFunc(schedule, collect); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		select {
		case err := <-errorChan:
			logger.Error("scheduled forecast collection failed", zap.Error(err))
			return err
		case <-egCtx.Done():
			logger.Info("context done")
			return egCtx.Err()
		}
	})
	return eg.Wait()
}

func runForecast(ctx context.Context, forecasts forecastService, store storageService, logger *zap.Logger, out io.Writer) error {
	records, err := forecasts.Forecasts(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errNoForecasts
	}

	if store == nil {
		for _, record := range records {
			fmt.Fprintf(out, "%s: %.4f\n", record.PeriodEnd.Format(time.RFC3339), record.PvEstimate)
		}
		return nil
	}

	for _, record := range records {
		if err := store.UpsertForecast(ctx, record); err != nil {
			return err
		}
	}
	logger.Info("forecast records saved to database", zap.Int("count", len(records)))
	return nil
}

// ReportCommand prints previously persisted daily records for a date range.
func ReportCommand(cliCtx *cli.Context) error {
	cfg, err := buildConfig(cliCtx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	start, end, err := parseDateRange(cliCtx.String("start"), cliCtx.String("end"), time.Now())
	if err != nil {
		return err
	}

	ctx := contxt.NewContext(runTimeout)
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return runReport(ctx, db, start, end, os.Stdout)
}

func runReport(ctx context.Context, store storageService, start, end string, out io.Writer) error {
	records, err := store.DailyRecords(ctx, start, end)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "no records between %s and %s\n", start, end)
		return nil
	}

	for _, record := range records {
		fmt.Fprintf(out, "%s: consumption %.2f kWh, import %.2f kWh, export %.2f kWh, cost £%.2f, income £%.2f, roi £%.2f\n",
			record.Date, record.HomeConsumption, record.GridImport, record.GridExport,
			record.Cost, record.Income, record.Roi)
	}

	totalRoi := lo.SumBy(records, func(record model.DailyRecord) float64 {
		return record.Roi
	})
	fmt.Fprintf(out, "ROI: £%.2f for %d days\n", utils.Round2(totalRoi), len(records))
	fmt.Fprintf(out, "ROI per day: £%.2f\n", utils.Round2(totalRoi/float64(len(records))))
	return nil
}
