package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Service struct {
	client            paho_mqtt.Client
	configuredSensors map[string]struct{}
}

func New(client paho_mqtt.Client) *Service {
	return &Service{
		client:            client,
		configuredSensors: make(map[string]struct{}),
	}
}

func (s *Service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}
