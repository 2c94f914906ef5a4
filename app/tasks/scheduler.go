package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/content"
	"github.com/lysyi3m/news-comb/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrTaskInFlight = errors.New("task of this kind is already queued or running")

type Pipeline interface {
	Ingester
	Recategorizer
}

type Scheduler struct {
	pipeline    Pipeline
	enrichment  EnrichmentStore
	configCache *sources.ConfigCache
	httpClient  *http.Client
	extractor   *content.Extractor
	userAgent   string
	enrichBatch int
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewScheduler(pipeline Pipeline, enrichment EnrichmentStore, configCache *sources.ConfigCache,
	httpClient *http.Client, extractor *content.Extractor) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	appCfg := cfg.Get()

	return &Scheduler{
		pipeline:    pipeline,
		enrichment:  enrichment,
		configCache: configCache,
		httpClient:  httpClient,
		extractor:   extractor,
		userAgent:   appCfg.UserAgent,
		enrichBatch: appCfg.EnrichBatch,
		interval:    time.Duration(appCfg.SchedulerInterval) * time.Second,
		workerCount: appCfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
		inFlight:    make(map[string]struct{}),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// EnqueueTask queues a task unless one of the same type and scope is already queued
// or running, in which case it returns ErrTaskInFlight.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	key := taskKey(task)

	s.mu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.mu.Unlock()
		return ErrTaskInFlight
	}
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	if err := s.enqueue(task); err != nil {
		s.release(task)
		return err
	}
	return nil
}

func (s *Scheduler) EnqueueAggregate() (string, error) {
	task := NewAggregateTask(s.pipeline)
	return task.GetID(), s.EnqueueTask(task)
}

func (s *Scheduler) EnqueueRecategorize() (string, error) {
	task := NewRecategorizeTask(s.pipeline)
	return task.GetID(), s.EnqueueTask(task)
}

func (s *Scheduler) enqueue(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) release(task TaskInterface) {
	s.mu.Lock()
	delete(s.inFlight, taskKey(task))
	s.mu.Unlock()
}

func (s *Scheduler) enqueueTasks() {
	if _, err := s.EnqueueAggregate(); err != nil {
		slog.Warn("Failed to enqueue AggregateTask", "error", err)
	}

	for _, sourceConfig := range s.configCache.GetEnabledConfigs() {
		if !sourceConfig.Settings.ExtractContent {
			continue
		}

		timeout := time.Duration(sourceConfig.Settings.Timeout) * time.Second
		task := NewEnrichArticlesTask(sourceConfig.Name, s.enrichBatch, timeout, s.enrichment, s.httpClient, s.extractor, s.userAgent)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue EnrichArticlesTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.release(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		s.release(task)
		if task.GetMaxRetries() > 0 {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "scope", task.GetScope(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.release(task)
			return
		}

		if retryErr := s.enqueue(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			s.release(task)
		}
	}()
}

func taskKey(task TaskInterface) string {
	return string(task.GetType()) + "/" + task.GetScope()
}
