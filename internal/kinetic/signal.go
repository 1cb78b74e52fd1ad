package kinetic

import "fmt"

// Signal is the categorical reading of a kinetic state row.
type Signal int

const (
	SignalWait Signal = iota
	SignalDipBuy
	SignalLaunchpad
	SignalMomentumRun
	SignalAvoid
	SignalNoData
	SignalCrisisHalt
)

func (s Signal) String() string {
	switch s {
	case SignalWait:
		return "WAIT"
	case SignalDipBuy:
		return "DIP_BUY"
	case SignalLaunchpad:
		return "LAUNCHPAD"
	case SignalMomentumRun:
		return "MOMENTUM_RUN"
	case SignalAvoid:
		return "AVOID"
	case SignalNoData:
		return "NO_DATA"
	case SignalCrisisHalt:
		return "CRISIS_HALT"
	default:
		return "UNKNOWN"
	}
}

// IsBuy reports whether the signal proposes opening a position. Only
// buy-class signals are suspended by a crisis halt.
func (s Signal) IsBuy() bool {
	return s == SignalDipBuy || s == SignalLaunchpad
}

// MarshalText lets signals serialize as their tag in JSON artifacts.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a signal back from its tag, so artifacts can be
// reloaded by downstream tooling.
func (s *Signal) UnmarshalText(text []byte) error {
	for _, candidate := range []Signal{
		SignalWait, SignalDipBuy, SignalLaunchpad, SignalMomentumRun,
		SignalAvoid, SignalNoData, SignalCrisisHalt,
	} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown signal tag %q", text)
}
