package models

const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// CallNotification is the transient wake-up event fanned out to a
// callee's devices. It carries no message content: the payload sent to
// the push services is exactly these three fields and must stay that way.
type CallNotification struct {
	CallerName string // display name shown by the client's call UI
	CallID     string // SIP Call-ID, lets the client match its re-register to the call
	CallType   string // "audio" | "video"
}
