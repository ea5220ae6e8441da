package gateway

// Dispatcher is the interface used by services to fan events out to
// connected WebSocket clients. The concrete Manager implements this
// interface.
type Dispatcher interface {
	PublishToChannel(channelID int64, event string, data any)
	DispatchToUser(userID int64, event string, data any)
	SubscribeToChannel(userID, channelID int64)
	UnsubscribeFromChannel(userID, channelID int64)
}
