package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

type sensor struct {
	metric string
	unit   string
	value  func(record model.DailyRecord) float64
}

var sensors = []sensor{
	{"roi", "GBP", func(r model.DailyRecord) float64 { return r.Roi }},
	{"cost", "GBP", func(r model.DailyRecord) float64 { return r.Cost }},
	{"income", "GBP", func(r model.DailyRecord) float64 { return r.Income }},
	{"no pv cost", "GBP", func(r model.DailyRecord) float64 { return r.NoPvCost }},
	{"grid import", "kWh", func(r model.DailyRecord) float64 { return r.GridImport }},
	{"grid export", "kWh", func(r model.DailyRecord) float64 { return r.GridExport }},
	{"home consumption", "kWh", func(r model.DailyRecord) float64 { return r.HomeConsumption }},
}

// PublishDaily pushes the day's figures to Home Assistant, one sensor per
// metric. Discovery config goes out once per sensor per process; states
// carry the day so dashboards can tell which day the figure belongs to.
func (s *Service) PublishDaily(_ context.Context, record model.DailyRecord) error {
	for _, sensor := range sensors {
		id := slug.Make(fmt.Sprintf("solar roi %s", sensor.metric))
		if err := s.registerSensor(id, sensor); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]string{
			"date":  record.Date,
			"value": fmt.Sprintf("%.2f", sensor.value(record)),
		})
		if err != nil {
			return err
		}

		topic := fmt.Sprintf("homeassistant/sensor/%s/state", id)
		token := s.client.Publish(topic, 0, false, payload)
		if res := token.WaitTimeout(time.Second * 10); res {
			continue
		}
		if err := token.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) registerSensor(id string, sensor sensor) error {
	if _, exists := s.configuredSensors[id]; exists {
		return nil
	}

	registerMessage := model.RegisterMessage{
		Tilda:      fmt.Sprintf("homeassistant/sensor/%s", id),
		Name:       fmt.Sprintf("Solar ROI %s", sensor.metric),
		ID:         id,
		StateTopic: "~/state",
		Unit:       sensor.unit,
		Device: model.RegisterDevice{
			Name:         "Solar ROI",
			Identifiers:  []string{"solar-roi"},
			Model:        "solarroi",
			Manufacturer: "solarroi",
		},
	}

	payload, err := json.Marshal(registerMessage)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("homeassistant/sensor/%s/config", id)
	token := s.client.Publish(topic, 1, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	if res := token.WaitTimeout(time.Second * 5); res {
		s.configuredSensors[id] = struct{}{}
	}
	return nil
}
