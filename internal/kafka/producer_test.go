package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newIdleProducer() *Producer {
	// Nothing is published in these tests, so the broker address is never
	// dialed; the writer closes without network traffic.
	return NewProducer([]string{"127.0.0.1:9092"}, "test-topic", 8)
}

// The api binary shuts down with Close, then cancel, then WaitClosed. The
// loop's select may take either branch once both fire, so run the sequence
// repeatedly to exercise both orderings.
func TestProducerShutdownCloseThenCancel(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := newIdleProducer()
		ctx, cancel := context.WithCancel(context.Background())
		p.Start(ctx)
		p.Close()
		cancel()
		p.WaitClosed()
	}
}

func TestProducerCloseAfterCancelledLoop(t *testing.T) {
	p := newIdleProducer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Start(ctx)
	p.WaitClosed() // loop took the ctx branch and closed the inbox itself

	assert.NotPanics(t, func() { p.Close() })
}
