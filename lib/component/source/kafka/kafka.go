package kafka

import (
	"sync"
	"time"

	"weir/lib/component"
	"weir/lib/log"
	"weir/lib/properties"
	"weir/weir"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
)

var (
	TopicsProperty                = properties.NewRequiredProperty[[]string]("topics", "")
	VersionProperty               = properties.NewProperty[string]("version", "", "2.4.0")
	BrokersProperty               = properties.NewRequiredProperty[[]string]("brokers", "")
	ClientIdProperty              = properties.NewProperty[string]("client.id", "client id", "")
	GroupIdProperty               = properties.NewProperty[string]("group.id", "", "weir")
	OffsetsCommitIntervalProperty = properties.NewProperty[int]("offsets.commit.interval", "kafka commit interval sec", 5)
	OffsetsInitial                = properties.NewProperty[string]("offsets.initial", "newest or oldest", "oldest")

	SASLUserProperty     = properties.NewProperty[string]("sasl-username", "", "")
	SASLPasswordProperty = properties.NewProperty[string]("sasl-password", "", "")

	// Watermarks ride on the record stream: on the cron schedule the source
	// promises that nothing older than the greatest event time seen, minus
	// the lateness allowance, will still arrive.
	WatermarkCronProperty = properties.NewProperty[string]("watermark.cron", "watermark emit schedule", "@every 5s")
	LatenessProperty      = properties.NewProperty[string]("lateness", "out-of-orderness allowance", "10s")
)

type source struct {
	ctx           weir.Context
	logger        weir.Logger
	emit          weir.Emit
	consumerGroup sarama.ConsumerGroup
	cron          *cron.Cron
	lateness      time.Duration

	mutex   sync.Mutex
	maxTime time.Time
}

func (s *source) Open(ctx weir.Context) error {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)

	config := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion(s.ctx.Properties().GetString(VersionProperty))
	if err != nil {
		return err
	}
	config.Version = version
	saslUser := s.ctx.Properties().GetString(SASLUserProperty)
	saslPassword := s.ctx.Properties().GetString(SASLPasswordProperty)
	if saslUser != "" && saslPassword != "" {
		config.Net.SASL.User = saslUser
		config.Net.SASL.Password = saslPassword
		config.Net.SASL.Enable = true
	}
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.AutoCommit.Interval = time.Duration(s.ctx.Properties().GetInt(OffsetsCommitIntervalProperty)) * time.Second
	if s.ctx.Properties().GetString(OffsetsInitial) == "newest" {
		config.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	if clientId := s.ctx.Properties().GetString(ClientIdProperty); clientId != "" {
		config.ClientID = clientId
	}

	s.lateness, err = time.ParseDuration(s.ctx.Properties().GetString(LatenessProperty))
	if err != nil {
		return errors.WithMessage(err, "can't parse lateness")
	}

	s.consumerGroup, err = sarama.NewConsumerGroup(
		s.ctx.Properties().GetStringSlice(BrokersProperty),
		s.ctx.Properties().GetString(GroupIdProperty),
		config)
	if err != nil {
		return err
	}

	s.cron = cron.New(cron.WithSeconds())
	if _, err = s.cron.AddFunc(s.ctx.Properties().GetString(WatermarkCronProperty), s.emitWatermark); err != nil {
		return errors.WithMessage(err, "can't schedule watermark emission")
	}

	go s.handleErrors()
	return nil
}

func (s *source) Close() error {
	s.cron.Stop()
	var err error
	for i := 1; i < 4; i++ {
		err = s.consumerGroup.Close()
		if err != nil {
			s.logger.Warnw("close kafka consumer error, waiting 1 second.", "time", i, "err", err)
			time.Sleep(1 * time.Second)
		} else {
			return nil
		}
	}
	return errors.WithMessage(err, "can't close kafka consumer")
}

func (s *source) PropertiesDef() weir.PropertiesDef {
	return weir.PropertiesDef{TopicsProperty, VersionProperty, BrokersProperty, GroupIdProperty,
		OffsetsCommitIntervalProperty, OffsetsInitial, WatermarkCronProperty, LatenessProperty}
}

func (s *source) Collect(emit weir.Emit) error {
	s.emit = emit
	s.cron.Start()
	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
			if err := s.consumerGroup.Consume(s.ctx.Ctx(), s.ctx.Properties().GetStringSlice(TopicsProperty), s); err != nil {
				return errors.WithMessage(err, "can't collect kafka")
			}
		}
	}
}

func (s *source) Setup(_ sarama.ConsumerGroupSession) error {
	s.logger.Infof("set up...")
	return nil
}

func (s *source) Cleanup(_ sarama.ConsumerGroupSession) error {
	s.logger.Infof("clean up...")
	return nil
}

func (s *source) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		eventTime := message.Timestamp
		s.mutex.Lock()
		if eventTime.After(s.maxTime) {
			s.maxTime = eventTime
		}
		s.mutex.Unlock()

		meta := map[string]any{"topic": message.Topic, "partition": cast.ToString(message.Partition), "offset": message.Offset}
		if message.Key != nil {
			meta["key"] = string(message.Key)
		}
		s.emit(&weir.Event{
			Meta:    meta,
			Message: string(message.Value),
			Time:    eventTime,
		})
		session.MarkMessage(message, "")
	}
	return nil
}

func (s *source) emitWatermark() {
	s.mutex.Lock()
	maxTime := s.maxTime
	s.mutex.Unlock()
	if s.emit == nil || maxTime.IsZero() {
		return
	}
	s.emit(weir.NewWatermark(maxTime.Add(-s.lateness)))
}

func (s *source) handleErrors() {
	for err := range s.consumerGroup.Errors() {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("shutdown handle errors.")
			return
		default:
			s.logger.Errorw("received error.", "err", err)
		}
	}
}

func New() weir.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("kafka", New)
}
