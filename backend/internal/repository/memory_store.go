package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
	pkgerrors "depot-records/backend/pkg/errors"
)

// MemoryStore 进程内的 engine.Store
// 写入与读取时均复制记录，调用方不会与存储共享状态
type MemoryStore struct {
	mu      sync.RWMutex
	records map[model.EntityType]map[string]model.Record
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{records: make(map[model.EntityType]map[string]model.Record)}
	for _, kind := range model.EntityTypes() {
		s.records[kind] = make(map[string]model.Record)
	}
	return s
}

func cloneRecord(rec model.Record) (model.Record, error) {
	return engine.ApplyPatch(rec, nil)
}

func (s *MemoryStore) Create(_ context.Context, rec model.Record) (string, error) {
	stored, err := cloneRecord(rec)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.records[rec.EntityType()]
	if !ok {
		return "", engine.ErrUnknownEntity
	}
	if _, exists := table[rec.Identifier()]; exists {
		return "", engine.ErrDuplicateID
	}
	table[rec.Identifier()] = stored
	return rec.Identifier(), nil
}

func (s *MemoryStore) Get(_ context.Context, kind model.EntityType, id string) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.records[kind]
	if !ok {
		return nil, engine.ErrUnknownEntity
	}
	rec, ok := table[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return cloneRecord(rec)
}

func (s *MemoryStore) Update(_ context.Context, kind model.EntityType, id string, expectedUpdatedAt time.Time, patch engine.Document) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.records[kind]
	if !ok {
		return nil, engine.ErrUnknownEntity
	}
	current, ok := table[id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	if !current.Audit().UpdatedAt.Equal(expectedUpdatedAt) {
		return nil, fmt.Errorf("%w: %w", engine.ErrConflict, pkgerrors.ErrOptimisticLock)
	}
	next, err := engine.ApplyPatch(current, patch)
	if err != nil {
		return nil, err
	}
	table[id] = next
	return cloneRecord(next)
}

func (s *MemoryStore) List(_ context.Context, kind model.EntityType, f engine.ListFilter) ([]model.Record, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.records[kind]
	if !ok {
		return nil, 0, engine.ErrUnknownEntity
	}

	ids := make([]string, 0, len(table))
	for id, rec := range table {
		if matches(rec, f) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	total := int64(len(ids))

	if f.Offset > 0 {
		if f.Offset >= len(ids) {
			ids = nil
		} else {
			ids = ids[f.Offset:]
		}
	}
	if f.Limit > 0 && len(ids) > f.Limit {
		ids = ids[:f.Limit]
	}

	out := make([]model.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := cloneRecord(table[id])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, nil
}

func matches(rec model.Record, f engine.ListFilter) bool {
	switch r := rec.(type) {
	case *model.JobCard:
		return (f.Status == "" || string(r.Status) == f.Status) &&
			(f.TrainID == "" || r.TrainID == f.TrainID) &&
			(f.CarID == "" || r.CarID == f.CarID) &&
			(f.DueBefore == nil || r.DueDate.Before(f.DueBefore.Time)) &&
			containsFold(f.Query, r.JCNo, r.Description)
	case *model.NCRReport:
		return (f.Status == "" || string(r.Status) == f.Status) &&
			(f.TrainID == "" || r.TrainID == f.TrainID) &&
			(f.CarID == "" || r.CarID == f.CarID) &&
			containsFold(f.Query, r.NCRReportNo, r.ItemDescription, r.PartNumber)
	case *model.Letter:
		return containsFold(f.Query, r.LetterNumber, r.Subject, r.Counterparty)
	case *model.Vendor:
		return (f.Status == "" || string(r.ContractStatus) == f.Status) &&
			containsFold(f.Query, r.VendorCode, r.Name)
	}
	return false
}

func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MemoryJournal 进程内的 engine.Journal
type MemoryJournal struct {
	mu     sync.RWMutex
	events []model.TransitionEvent
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, ev *model.TransitionEvent) error {
	j.mu.Lock()
	j.events = append(j.events, *ev)
	j.mu.Unlock()
	return nil
}

func (j *MemoryJournal) History(_ context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := []model.TransitionEvent{}
	for _, ev := range j.events {
		if ev.EntityType == kind && ev.RecordID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}
