package worker

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyQueued is returned when the order is already waiting for a worker.
	ErrAlreadyQueued = errors.New("generation already queued")
	// ErrQueueFull is returned when the queue has no free slot.
	ErrQueueFull = errors.New("generation queue is full")
)

// Queue is a bounded FIFO of order tokens with single flight per token.
// A token is queued from Enqueue until Begin and running from Begin until
// Done. A running token accepts one follow-up that is queued when it is done,
// so the same token never runs on two workers at once.
type Queue struct {
	jobs chan string

	mu      sync.Mutex
	queued  map[string]struct{}
	running map[string]bool // value marks a pending follow-up
}

// NewQueue constructs Queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		jobs:    make(chan string, capacity),
		queued:  make(map[string]struct{}),
		running: make(map[string]bool),
	}
}

// Enqueue schedules generation for token without blocking.
func (q *Queue) Enqueue(token string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[token]; ok {
		return ErrAlreadyQueued
	}
	if followUp, ok := q.running[token]; ok {
		if followUp {
			return ErrAlreadyQueued
		}
		q.running[token] = true
		return nil
	}
	return q.push(token)
}

func (q *Queue) push(token string) error {
	select {
	case q.jobs <- token:
		q.queued[token] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Jobs exposes queued tokens to workers.
func (q *Queue) Jobs() <-chan string {
	return q.jobs
}

// Begin marks token received from Jobs as running.
func (q *Queue) Begin(token string) {
	q.mu.Lock()
	delete(q.queued, token)
	if _, ok := q.running[token]; !ok {
		q.running[token] = false
	}
	q.mu.Unlock()
}

// Done clears the running marker of token and queues its follow-up, if any.
// ErrQueueFull reports a follow-up that could not be queued.
func (q *Queue) Done(token string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	followUp := q.running[token]
	delete(q.running, token)
	if !followUp {
		return nil
	}
	return q.push(token)
}

// InFlight reports whether token is queued or running.
func (q *Queue) InFlight(token string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[token]; ok {
		return true
	}
	_, ok := q.running[token]
	return ok
}

// Len returns the number of tokens waiting for a worker.
func (q *Queue) Len() int {
	return len(q.jobs)
}
