package session

// Cause identifies why an active session was interrupted. Each cause has
// a fixed priority rank for display ordering and a fixed auto-resume
// policy. Causes where the user did not consciously disengage are safe to
// resume silently; explicit user action or a safety concern requires
// re-confirmation.
type Cause string

const (
	// CauseBackgrounded means the app lost foreground without user intent.
	CauseBackgrounded Cause = "backgrounded"
	// CauseExternalAudio means a call-like audio interruption took over.
	CauseExternalAudio Cause = "external_audio_interruption"
	// CauseSystemAlert means a transient system dialog covered the session.
	CauseSystemAlert Cause = "system_alert"
	// CauseLowBattery means the device reported a low-battery condition.
	CauseLowBattery Cause = "low_battery"
	// CauseUserInitiated means the user explicitly paused the session.
	CauseUserInitiated Cause = "user_initiated"
	// CauseEmergencyStop means the session was force-stopped for safety.
	CauseEmergencyStop Cause = "emergency_stop"
	// CauseTimerFault means the scheduling primitive failed to tick.
	CauseTimerFault Cause = "timer_fault"
)

// causePolicy is the fixed per-cause policy table.
var causePolicy = map[Cause]struct {
	priority      int
	autoResumable bool
}{
	CauseEmergencyStop: {priority: 0, autoResumable: false},
	CauseTimerFault:    {priority: 1, autoResumable: false},
	CauseExternalAudio: {priority: 2, autoResumable: false},
	CauseUserInitiated: {priority: 3, autoResumable: false},
	CauseLowBattery:    {priority: 4, autoResumable: true},
	CauseSystemAlert:   {priority: 5, autoResumable: true},
	CauseBackgrounded:  {priority: 6, autoResumable: true},
}

// String returns the string representation of the cause.
func (c Cause) String() string {
	return string(c)
}

// IsValid returns true if the cause is a recognized interruption cause.
func (c Cause) IsValid() bool {
	_, ok := causePolicy[c]
	return ok
}

// Priority returns the display ordering rank for this cause. Lower ranks
// win when multiple causes are pending. Unknown causes rank last.
func (c Cause) Priority() int {
	p, ok := causePolicy[c]
	if !ok {
		return len(causePolicy)
	}
	return p.priority
}

// AutoResumable reports whether a session interrupted by this cause may
// be resumed without explicit user confirmation.
func (c Cause) AutoResumable() bool {
	return causePolicy[c].autoResumable
}
