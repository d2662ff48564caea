package ports

import "timeslider/internal/domain/temporal"

type SliderMetrics interface {
	RecordStep(strategy temporal.Strategy)
	RecordTimerArmed()
	RecordTimerCancelled()
	RecordPublishFailure()
}
