package mirage

import "github.com/mirageim/mirage-go/pkg/event"

// On registers a persistent handler for an event name. Names are
// dot-paths; a prefix subscribes to the whole subtree ("message"
// matches "message.group.normal"). Handlers for the same name fire in
// registration order.
func (c *Client) On(name string, h event.Handler) event.Subscription {
	return c.events.On(name, h)
}

// Once registers a handler that fires at most once and is then
// removed.
func (c *Client) Once(name string, h event.Handler) event.Subscription {
	return c.events.Once(name, h)
}

// Off removes a single registration.
func (c *Client) Off(sub event.Subscription) {
	c.events.Off(sub)
}

// OffName removes every registration for an exact name.
func (c *Client) OffName(name string) {
	c.events.OffName(name)
}
