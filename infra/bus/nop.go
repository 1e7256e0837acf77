package bus

import "context"

// NopPublisher discards all events. Used when no external bus is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
