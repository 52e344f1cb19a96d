package publisher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	publishedDays        sync.Map
)

type publisher interface {
	// PublishDaily delivers one reconciled day to the sink.
	PublishDaily(ctx context.Context, record model.DailyRecord) error
}

func Register(name string, p publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = p
	return nil
}

// PublishDaily fans the day records out to every registered sink in date
// order. Records failing validation are skipped with a warning; a day whose
// figures have not changed since the last publish within this process is not
// re-sent. Sink errors are logged and do not stop the remaining records.
func PublishDaily(ctx context.Context, records map[string]model.DailyRecord) error {
	if len(registeredPublishers) == 0 {
		return nil
	}

	days := lo.Keys(records)
	sort.Strings(days)

	count := 0
	for _, day := range days {
		record := records[day]
		if err := record.Validate(); err != nil {
			zap.L().Warn("skipping unpersistable record",
				zap.String("day", day),
				zap.Error(err),
			)
			continue
		}
		if !shouldPublish(record) {
			continue
		}
		count++
		for name, p := range registeredPublishers {
			if err := p.PublishDaily(ctx, record); err != nil {
				zap.L().Error("failed to publish daily record",
					zap.Error(err),
					zap.String("publisher", name),
					zap.String("day", day),
				)
				continue
			}
		}
	}
	zap.L().Debug("published daily records", zap.Int("count", count))
	return nil
}

func shouldPublish(record model.DailyRecord) bool {
	fingerprint := fmt.Sprintf("%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f",
		record.HomeConsumption, record.GridImport, record.GridExport,
		record.Cost, record.Income, record.NoPvCost, record.Roi)
	previous, exists := publishedDays.Load(record.Date)
	if exists && previous.(string) == fingerprint {
		return false
	}
	publishedDays.Store(record.Date, fingerprint)
	return true
}
