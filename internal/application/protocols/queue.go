package protocols

import "context"

type Queue interface {
	Dial() error
	Consume(queue string) error
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}
