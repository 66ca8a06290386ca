package weekly

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires the snapshot job on a fixed cadence, evaluated in the
// board's timezone no matter where the host runs
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	logger *zap.Logger
}

// NewScheduler register job under the given cron spec (standard five
// field form, eg. "0 0 * * 1" for Monday midnight). Each tick runs under
// runTimeout; a tick arriving while the previous run is still going is
// dropped
func NewScheduler(job *SnapshotJob, spec string, runTimeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	cl := &cronZapLogger{logger}
	c := cron.New(
		cron.WithLocation(Zone),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := job.Run(ctx); err != nil {
			logger.Error("snapshot run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, spec: spec, logger: logger}, nil
}

// Start begin scheduling in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("snapshot scheduler started", zap.String("cron.spec", s.spec))
}

// Stop stop scheduling and wait for a running tick to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("snapshot scheduler stopped")
}

// cronZapLogger adapt zap to cron.Logger
type cronZapLogger struct {
	logger *zap.Logger
}

func (l *cronZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l *cronZapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
