package core

import (
	"time"

	"github.com/automoto/deadreckoning/network"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/leap-fish/necs/esync"
)

const ReporterName = "Reporter"

// TrackingSource is anything that knows how far drawn entities are from the
// truth.
type TrackingSource interface {
	TrackingError() float64
}

// Reporter periodically logs how closely drawn entities track the truth.
type Reporter struct {
	source   TrackingSource
	intake   *network.Intake
	recorder *network.Recorder
	follow   esync.NetworkId
	tracked  bool
	every    float64
	elapsed  float64
	uptime   float64
}

// NewReporter logs every `every` seconds of simulated time. source may be nil
// when no ground truth exists, as during a replay.
func NewReporter(source TrackingSource, intake *network.Intake, every float64) *Reporter {
	return &Reporter{source: source, intake: intake, every: every}
}

// SetRecorder adds recording progress to the report.
func (r *Reporter) SetRecorder(rec *network.Recorder) {
	r.recorder = rec
}

// Follow adds the update interval statistics of id to the report.
func (r *Reporter) Follow(id esync.NetworkId) {
	r.follow = id
	r.tracked = true
}

func (r *Reporter) Name() string {
	return ReporterName
}

func (r *Reporter) OnTick(dt float64) {
	r.uptime += dt
	r.elapsed += dt
	if r.every <= 0 || r.elapsed < r.every {
		return
	}
	r.elapsed = 0
	logger.Info("tracking", r.fields()...)
}

func (r *Reporter) fields() []any {
	applied, dropped := r.intake.Stats()
	fields := []any{
		"uptime", durafmt.Parse(time.Duration(r.uptime * float64(time.Second))).LimitFirstN(2).String(),
		"applied", humanize.Comma(int64(applied)),
		"dropped", humanize.Comma(int64(dropped)),
	}
	if r.source != nil {
		fields = append(fields, "meanError", r.source.TrackingError())
	}
	if r.tracked {
		if h := r.intake.History(r.follow); h != nil {
			if mean, stddev, ok := h.IntervalStats(); ok {
				fields = append(fields, "followed", r.follow, "interval", mean, "intervalStddev", stddev)
			}
		}
	}
	if r.recorder != nil {
		fields = append(fields,
			"session", r.recorder.Session(),
			"recorded", humanize.Bytes(r.recorder.BytesWritten()),
		)
	}
	return fields
}
