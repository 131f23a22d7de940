package game

import (
	"sync"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/game/board"
)

// StepRecord is a snapshot taken after one walk step was committed.
type StepRecord struct {
	ActivationID   string
	Step           int
	Tile           board.Index
	Abilities      []board.Ability
	BaseScore      int // step index x step score
	MultiplierUsed int
	ScoreDelta     int
	Score          int
	Health         int
	Multiplier     int
	At             time.Duration
}

// Journal keeps the most recent step records of a session for inspection
// and step-by-step playback. It is bounded; the oldest records are dropped.
type Journal struct {
	SessionID string
	mu        sync.RWMutex
	records   []*StepRecord
	cursor    int
	capacity  int
	dropped   int
}

// NewJournal creates a journal holding at most capacity records.
func NewJournal(sessionID string, capacity int) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{
		SessionID: sessionID,
		records:   make([]*StepRecord, 0, min(capacity, 64)),
		capacity:  capacity,
	}
}

// Record appends a snapshot, evicting the oldest when full.
func (j *Journal) Record(rec *StepRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.records) == j.capacity {
		j.records = append(j.records[:0], j.records[1:]...)
		j.dropped++
		if j.cursor > 0 {
			j.cursor--
		}
	}
	j.records = append(j.records, rec)
}

// Start rewinds playback to the oldest record.
func (j *Journal) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cursor = 0
}

// Next returns the record at the cursor and advances it.
func (j *Journal) Next() *StepRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor < len(j.records) {
		rec := j.records[j.cursor]
		j.cursor++
		return rec
	}
	return nil
}

// Previous moves the cursor back and returns the record there.
func (j *Journal) Previous() *StepRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cursor > 0 {
		j.cursor--
		return j.records[j.cursor]
	}
	return nil
}

// Skip moves the cursor by count, clamped to the recorded range.
func (j *Journal) Skip(count int) *StepRecord {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.records) == 0 {
		j.cursor = 0
		return nil
	}
	idx := j.cursor + count
	if idx >= len(j.records) {
		idx = len(j.records) - 1
	}
	if idx < 0 {
		idx = 0
	}
	j.cursor = idx
	return j.records[idx]
}

// Size returns the number of retained records.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}

// Cursor returns the playback position.
func (j *Journal) Cursor() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.cursor
}

// Dropped returns how many records were evicted.
func (j *Journal) Dropped() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.dropped
}

// At returns the record at index, or nil.
func (j *Journal) At(index int) *StepRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index >= 0 && index < len(j.records) {
		return j.records[index]
	}
	return nil
}

// Activation returns the retained records of one walk in step order.
func (j *Journal) Activation(activationID string) []*StepRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []*StepRecord
	for _, rec := range j.records {
		if rec.ActivationID == activationID {
			result = append(result, rec)
		}
	}
	return result
}
