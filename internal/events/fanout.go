package events

// Target is the broadcaster method set shared by the websocket hub and the publisher
type Target interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	BroadcastToDashboard(msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// Fanout forwards every call to each target in order
type Fanout []Target

func (f Fanout) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	for _, t := range f {
		t.BroadcastToSession(sessionID, msgType, payload)
	}
}

func (f Fanout) BroadcastToDashboard(msgType string, payload interface{}) {
	for _, t := range f {
		t.BroadcastToDashboard(msgType, payload)
	}
}

func (f Fanout) DisconnectSession(sessionID string) {
	for _, t := range f {
		t.DisconnectSession(sessionID)
	}
}
