package scheduler

import (
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/david/syncscout/internal/logging"
)

// NewSupervisor returns the root supervisor for background services.
// Supervisor events are written to the structured log.
func NewSupervisor(name string) *suture.Supervisor {
	log := logging.Component("supervisor")
	return suture.New(name, suture.Spec{
		EventHook: func(e suture.Event) {
			log.Warn().Fields(e.Map()).Msg(e.String())
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
}
