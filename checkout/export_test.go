package checkout

import "time"

func WithAttachWait(b Broker, wait time.Duration) Broker {
	b.attachWait = wait
	return b
}
