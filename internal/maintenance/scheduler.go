// Package maintenance runs the background housekeeping jobs: sweeping
// idle collection managers and broadcasting a nightly sync so every
// connected client re-fetches against the store.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/BatStateU-CoE/pap-tracker-backend/internal/gateway"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps"
)

type Scheduler struct {
	hub  *paps.Hub
	pub  gateway.EventPublisher
	cron *cron.Cron

	// Managers untouched for longer than this are torn down. Their
	// next request recreates them with a fresh resolution.
	maxIdle time.Duration
}

func NewScheduler(hub *paps.Hub, pub gateway.EventPublisher) *Scheduler {
	return &Scheduler{
		hub:     hub,
		pub:     pub,
		cron:    cron.New(cron.WithSeconds()),
		maxIdle: 30 * time.Minute,
	}
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	// Every 10 minutes: drop idle managers.
	if _, err := s.cron.AddFunc("0 */10 * * * *", s.sweepIdle); err != nil {
		log.Printf("[error] operation=cron_add job=sweep_idle err=%v", err)
		return
	}

	// 12:00 AM: full resync broadcast.
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.nightlySync); err != nil {
		log.Printf("[error] operation=cron_add job=nightly_sync err=%v", err)
		return
	}

	log.Println("[info] operation=cron_start jobs=sweep_idle,nightly_sync")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepIdle() {
	dropped := s.hub.SweepIdle(s.maxIdle)
	if dropped > 0 {
		log.Printf("[info] operation=sweep_idle dropped=%d", dropped)
	}
}

func (s *Scheduler) nightlySync() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := gateway.ChangeEvent{Op: gateway.OpSync, At: time.Now().UTC()}
	if err := s.pub.Publish(ctx, event); err != nil {
		log.Printf("[warn] operation=nightly_sync err=%v", err)
		return
	}
	log.Println("[info] operation=nightly_sync status=broadcast")
}
