package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

type fakeSink struct {
	published []model.DailyRecord
	err       error
}

func (f *fakeSink) PublishDaily(_ context.Context, record model.DailyRecord) error {
	f.published = append(f.published, record)
	return f.err
}

func resetRegistry() {
	registeredPublishers = make(map[string]publisher)
	publishedDays = sync.Map{}
}

func testRecord(date string, roi float64) model.DailyRecord {
	return model.DailyRecord{
		Date:            date,
		HomeConsumption: 10.0,
		GridImport:      8.0,
		Cost:            2.0,
		Roi:             roi,
	}
}

func TestRegister_Duplicate(t *testing.T) {
	resetRegistry()

	sink := &fakeSink{}
	require.NoError(t, Register("database", sink))
	assert.ErrorIs(t, Register("database", sink), errAlreadyRegistered)
	assert.NoError(t, Register("mqtt", sink))
}

func TestPublishDaily_OrderedFanOut(t *testing.T) {
	resetRegistry()

	sink := &fakeSink{}
	require.NoError(t, Register("database", sink))

	records := map[string]model.DailyRecord{
		"2024-01-16": testRecord("2024-01-16", 1.0),
		"2024-01-15": testRecord("2024-01-15", 0.5),
	}
	require.NoError(t, PublishDaily(context.Background(), records))

	require.Len(t, sink.published, 2)
	assert.Equal(t, "2024-01-15", sink.published[0].Date)
	assert.Equal(t, "2024-01-16", sink.published[1].Date)
}

func TestPublishDaily_NoSinksIsNoOp(t *testing.T) {
	resetRegistry()

	records := map[string]model.DailyRecord{
		"2024-01-15": testRecord("2024-01-15", 0.5),
	}
	assert.NoError(t, PublishDaily(context.Background(), records))
}

func TestPublishDaily_SkipsInvalidRecord(t *testing.T) {
	resetRegistry()

	sink := &fakeSink{}
	require.NoError(t, Register("database", sink))

	records := map[string]model.DailyRecord{
		"bogus":      {Date: "bogus"},
		"2024-01-15": testRecord("2024-01-15", 0.5),
	}
	require.NoError(t, PublishDaily(context.Background(), records))

	require.Len(t, sink.published, 1)
	assert.Equal(t, "2024-01-15", sink.published[0].Date)
}

func TestPublishDaily_DeduplicatesUnchangedDays(t *testing.T) {
	resetRegistry()

	sink := &fakeSink{}
	require.NoError(t, Register("database", sink))

	records := map[string]model.DailyRecord{
		"2024-01-15": testRecord("2024-01-15", 0.5),
	}
	require.NoError(t, PublishDaily(context.Background(), records))
	require.NoError(t, PublishDaily(context.Background(), records))
	assert.Len(t, sink.published, 1, "an unchanged day is not re-sent")

	// The same day with new figures goes out again.
	records["2024-01-15"] = testRecord("2024-01-15", 0.75)
	require.NoError(t, PublishDaily(context.Background(), records))
	assert.Len(t, sink.published, 2)
}

func TestPublishDaily_SinkErrorDoesNotStopOthers(t *testing.T) {
	resetRegistry()

	failing := &fakeSink{err: errors.New("broker down")}
	healthy := &fakeSink{}
	require.NoError(t, Register("mqtt", failing))
	require.NoError(t, Register("database", healthy))

	records := map[string]model.DailyRecord{
		"2024-01-15": testRecord("2024-01-15", 0.5),
		"2024-01-16": testRecord("2024-01-16", 1.0),
	}
	require.NoError(t, PublishDaily(context.Background(), records))

	assert.Len(t, healthy.published, 2)
	assert.Len(t, failing.published, 2)
}
