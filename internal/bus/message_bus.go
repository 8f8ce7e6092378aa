package bus

// Bus is the contract between chat channels and the companion core.
type Bus interface {
	// PublishInbound delivers a message from a channel to the companion loop.
	PublishInbound(msg InboundMessage)
	// PublishOutbound delivers a response from the core to a channel.
	PublishOutbound(msg OutboundMessage)
	// InboundChan returns a receive-only channel for the companion loop to consume.
	InboundChan() <-chan InboundMessage
	// OutboundChan returns a receive-only channel for the channel manager to consume.
	OutboundChan() <-chan OutboundMessage
}

// MessageBus is the default in-process Bus implementation backed by buffered
// Go channels, so senders never block on a slow consumer.
type MessageBus struct {
	inbound  chan InboundMessage  // channels -> core
	outbound chan OutboundMessage // core -> channels
}

func NewMessageBus(bufSize int) Bus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufSize),
		outbound: make(chan OutboundMessage, bufSize),
	}
}

func (b *MessageBus) PublishInbound(msg InboundMessage)   { b.inbound <- msg }
func (b *MessageBus) PublishOutbound(msg OutboundMessage) { b.outbound <- msg }

func (b *MessageBus) InboundChan() <-chan InboundMessage   { return b.inbound }
func (b *MessageBus) OutboundChan() <-chan OutboundMessage { return b.outbound }
