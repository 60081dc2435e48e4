package infra

import "context"

// PublisherInterface delivers lifecycle events keyed by routing key.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// Fanout publishes to every publisher and returns the first error.
type Fanout []PublisherInterface

var _ PublisherInterface = Fanout(nil)

func (f Fanout) Publish(ctx context.Context, routingKey string, data any) error {
	var first error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, routingKey, data); err != nil && first == nil {
			first = err
		}
	}
	return first
}
