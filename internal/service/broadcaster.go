package service

// Broadcaster interface for session event broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	BroadcastToDashboard(msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
