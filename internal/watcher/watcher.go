// Package watcher は同期サイクルを一定間隔で回す監視ループ。
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alisher2102/TumiTGBot/internal/usecase"
)

// 1サイクル分の同期を約束。
type Engine interface {
	RunCycle(ctx context.Context) error
}

// 直近の稼働状況（/healthz用）
type Status struct {
	Running     bool      `json:"running"`
	Cycles      uint64    `json:"cycles"`
	LastCycleAt time.Time `json:"last_cycle_at"`
	LastError   string    `json:"last_error,omitempty"`
}

type Watcher struct {
	engine   Engine
	log      *slog.Logger
	interval time.Duration
	cooldown time.Duration
	sleep    usecase.Sleeper

	mu     sync.Mutex
	status Status
}

// DI（sleepはnilで実時間sleep）
func New(engine Engine, log *slog.Logger, interval, cooldown time.Duration, sleep usecase.Sleeper) *Watcher {
	if sleep == nil {
		sleep = usecase.SleepContext
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		engine:   engine,
		log:      log,
		interval: interval,
		cooldown: cooldown,
		sleep:    sleep,
	}
}

// Run はctxが打ち切られるまでループを回し続ける。
// サイクル内のエラーはログだけ残して次のサイクルへ。
// ループ自体がpanicで落ちたらクールダウン後に再起動する。
func (w *Watcher) Run(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)

	for {
		err := w.runLoop(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		w.log.Error("watch loop crashed, restarting", "err", err, "cooldown", w.cooldown)
		if err := w.sleep(ctx, w.cooldown); err != nil {
			return ctx.Err()
		}
	}
}

func (w *Watcher) runLoop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		cycleErr := w.engine.RunCycle(ctx)
		w.recordCycle(cycleErr)
		if cycleErr != nil && ctx.Err() == nil {
			w.log.Error("cycle failed", "err", cycleErr)
		}

		if err := w.sleep(ctx, w.interval); err != nil {
			return nil
		}
	}
}

// Health は現在の稼働状況のスナップショットを返す。
func (w *Watcher) Health() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Watcher) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Running = running
}

func (w *Watcher) recordCycle(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Cycles++
	w.status.LastCycleAt = time.Now()
	if err != nil {
		w.status.LastError = err.Error()
	} else {
		w.status.LastError = ""
	}
}
