package queue

import (
	"context"
	"fmt"
	"time"

	config "github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/configs"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

const dialAttempts = 5

type RabbitMQ struct {
	Channel    *amqp.Channel
	Connection *amqp.Connection
	Configs    *config.Config
	Log        *logrus.Logger
	OutChannel chan<- *amqp.Delivery
}

func NewRabbitMQ(configs *config.Config, log *logrus.Logger, outChannel chan<- *amqp.Delivery) *RabbitMQ {
	return &RabbitMQ{
		Channel:    nil,
		Connection: nil,
		Configs:    configs,
		Log:        log,
		OutChannel: outChannel,
	}
}

func (rmq *RabbitMQ) Setup() error {
	exchanges := []struct {
		Name string
		Type string
	}{
		{rmq.Configs.DispatchExchange, "direct"},
		{rmq.Configs.SenderExchange, "topic"},
	}

	for _, ex := range exchanges {
		if err := rmq.DeclareExchange(ex.Name, ex.Type); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", ex.Name, err)
		}
	}

	if err := rmq.DeclareQueue(rmq.Configs.DispatchQueue); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", rmq.Configs.DispatchQueue, err)
	}

	if err := rmq.BindQueue(rmq.Configs.DispatchExchange, rmq.Configs.DispatchRoutingKey, rmq.Configs.DispatchQueue); err != nil {
		return fmt.Errorf("failed to bind queue %s to exchange %s: %w", rmq.Configs.DispatchQueue, rmq.Configs.DispatchExchange, err)
	}

	rmq.Log.Info("[RABBITMQ] - Setup completed")

	return nil
}

func (rmq *RabbitMQ) Dial() error {
	var connectionString string
	if rmq.Configs.Environment == "development" || rmq.Configs.Environment == "staging" {
		connectionString = fmt.Sprintf("amqp://%s:%s@%s:%s", rmq.Configs.RabbitMQUser, rmq.Configs.RabbitMQPassword, rmq.Configs.RabbitMQUrl, rmq.Configs.RabbitMQPort)
	} else {
		connectionString = fmt.Sprintf("amqps://%s:%s@%s:%s", rmq.Configs.RabbitMQUser, rmq.Configs.RabbitMQPassword, rmq.Configs.RabbitMQUrl, rmq.Configs.RabbitMQPort)
	}

	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		var connection *amqp.Connection
		connection, err = amqp.Dial(connectionString)
		if err == nil {
			rmq.Connection = connection
			break
		}
		// Jittered backoff so a fleet of restarting consumers does not
		// hammer the broker in lockstep.
		sleep := time.Duration(attempt)*time.Second + time.Duration(rand.Intn(1000))*time.Millisecond
		rmq.Log.Warnf("[RABBITMQ] - Dial attempt %d failed: %v, retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	channel, err := rmq.Connection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	rmq.Channel = channel

	if err := rmq.Setup(); err != nil {
		return fmt.Errorf("failed to set up RabbitMQ: %w", err)
	}

	rmq.Log.Info("[RABBITMQ] - Connection established")
	return nil
}

func (rmq *RabbitMQ) Consume(queue string) error {
	msgs, err := rmq.Channel.Consume(
		queue,
		"dispatch-engine-consumer",
		false, // manual ack, consumers decide per message
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume messages: %w", err)
	}

	go func() {
		for msg := range msgs {
			m := msg
			rmq.OutChannel <- &m
		}
		close(rmq.OutChannel)
	}()

	return nil
}

func (rmq *RabbitMQ) Publish(ctx context.Context, routingKey string, body []byte) error {
	return rmq.Channel.PublishWithContext(ctx,
		rmq.Configs.SenderExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (rmq *RabbitMQ) DeclareExchange(exchange, exType string) error {
	return rmq.Channel.ExchangeDeclare(
		exchange,
		exType,
		true,
		false,
		false,
		false,
		nil,
	)
}

func (rmq *RabbitMQ) DeclareQueue(queue string) error {
	_, err := rmq.Channel.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	return err
}

func (rmq *RabbitMQ) BindQueue(exchange, routingKey, queue string) error {
	return rmq.Channel.QueueBind(
		queue,
		routingKey,
		exchange,
		false,
		nil,
	)
}

func (rmq *RabbitMQ) Close() error {
	if rmq.Channel != nil {
		if err := rmq.Channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
		rmq.Channel = nil
	}
	if rmq.Connection != nil {
		if err := rmq.Connection.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
		rmq.Connection = nil
	}
	return nil
}
