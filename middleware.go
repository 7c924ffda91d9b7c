package mq

// HandlerInterceptor wraps a MessageHandler; applyHandlerInterceptors composes
// a slice of them around a handler. Subscribe does not apply any on its own.
// Interceptors compose outside-in: the first one in the slice sees the
// message first and runs last on the way back out.
type HandlerInterceptor func(MessageHandler) MessageHandler

// PublishFunc matches the signature of Client.Publish.
type PublishFunc func(topic string, payload []byte, opts ...PublishOption) Token

// PublishInterceptor wraps a PublishFunc; applyPublishInterceptors composes a
// slice of them around a PublishFunc. Publish does not apply any on its own.
type PublishInterceptor func(PublishFunc) PublishFunc

// RequestReplyFilter drops inbound messages that are not requests (those
// whose Properties.IsRequest reports false), so a handler wrapped with it only
// sees messages carrying both a ResponseTopic and CorrelationData and never
// has to check Properties.IsRequest itself.
func RequestReplyFilter(next MessageHandler) MessageHandler {
	return func(c *Client, msg Message) {
		if msg.Properties == nil || !msg.Properties.IsRequest() {
			return
		}
		next(c, msg)
	}
}

// applyHandlerInterceptors wraps a MessageHandler with multiple interceptors.
func applyHandlerInterceptors(handler MessageHandler, interceptors []HandlerInterceptor) MessageHandler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		handler = interceptors[i](handler)
	}
	return handler
}

// applyPublishInterceptors wraps a PublishFunc with multiple interceptors.
func applyPublishInterceptors(publish PublishFunc, interceptors []PublishInterceptor) PublishFunc {
	for i := len(interceptors) - 1; i >= 0; i-- {
		publish = interceptors[i](publish)
	}
	return publish
}
