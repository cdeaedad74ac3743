package producer

import (
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/aryehlev/codemaster/models"
	"github.com/aryehlev/codemaster/serde"
)

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(models.Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// KafkaPublisher writes game events as JSON to a Kafka topic, keyed by user
// id so one player's events stay ordered within a partition. Publish blocks
// until the broker acknowledges, bounded by Producer.Timeout.
type KafkaPublisher struct {
	topic    string
	producer sarama.SyncProducer
	encoder  serde.JsonEncoder[models.Event]
}

func NewKafkaConfig() *sarama.Config {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Retry.Max = 3
	conf.Producer.Timeout = 5 * time.Second
	conf.Net.DialTimeout = 5 * time.Second
	return conf
}

func NewKafkaPublisher(addrs []string, topic string, conf *sarama.Config) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(addrs, conf)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisherFromProducer(producer, topic), nil
}

func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, producer: producer}
}

func (k *KafkaPublisher) Publish(ev models.Event) error {
	value, err := k.encoder.Encode(ev)
	if err != nil {
		return err
	}

	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(ev.UserID, 10)),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"event":     ev.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("Published event")

	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
