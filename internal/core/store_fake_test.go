package core

import (
	"context"
	"errors"
	"sync"
)

// fakeStore is an in-memory Store. Committed sets live in sets; a
// transaction only publishes its writes on Commit.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	sets   map[int64]*fakeSet

	// failures injected by tests
	failCreate       error
	failQuestion     error // returned by the failQuestionCall-th InsertQuestions
	failQuestionCall int
	failCommit       error

	// counters
	begins        int
	commits       int
	rollbacks     int
	questionCalls int
	lookups       int

	// raceOnCreate makes CreateSet commit a competing set with the same
	// fingerprint and return ErrDuplicateRace.
	raceOnCreate bool
}

type fakeSet struct {
	NewSet
	ID           int64
	Instructions []string
	Questions    []QuestionRecord
	Total        int
	Deleted      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[int64]*fakeSet)}
}

func (s *fakeStore) FindSetByFingerprint(_ context.Context, fingerprint string, ownerID int64) (*ExistingSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	for _, set := range s.sets {
		if !set.Deleted && set.Fingerprint == fingerprint && set.OwnerID == ownerID {
			return &ExistingSet{ID: set.ID, TotalQuestions: set.Total}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindSetByExternalID(_ context.Context, externalID string) (*ExistingSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, set := range s.sets {
		if !set.Deleted && externalID != "" && set.ExternalID == externalID {
			return &ExistingSet{ID: set.ID, TotalQuestions: set.Total}, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Begin(context.Context) (StoreTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return &fakeTx{store: s}, nil
}

// add stores a committed set directly.
func (s *fakeStore) add(set fakeSet) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	set.ID = s.nextID
	s.sets[set.ID] = &set
	return set.ID
}

func (s *fakeStore) get(id int64) *fakeSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[id]
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

type fakeTx struct {
	store *fakeStore
	set   *fakeSet
	done  bool
}

func (t *fakeTx) CreateSet(_ context.Context, set NewSet) (int64, error) {
	s := t.store
	if s.failCreate != nil {
		return 0, s.failCreate
	}
	if s.raceOnCreate {
		s.add(fakeSet{NewSet: set, Total: 3})
		return 0, ErrDuplicateRace
	}
	s.mu.Lock()
	s.nextID++
	t.set = &fakeSet{NewSet: set, ID: s.nextID}
	s.mu.Unlock()
	return t.set.ID, nil
}

func (t *fakeTx) InsertInstructions(_ context.Context, setID int64, texts []string) error {
	if t.set == nil || t.set.ID != setID {
		return errors.New("unknown set")
	}
	t.set.Instructions = append(t.set.Instructions, texts...)
	return nil
}

func (t *fakeTx) InsertQuestions(_ context.Context, setID int64, questions []QuestionRecord) error {
	s := t.store
	s.mu.Lock()
	s.questionCalls++
	call := s.questionCalls
	s.mu.Unlock()

	if s.failQuestion != nil && call == s.failQuestionCall {
		return s.failQuestion
	}
	if t.set == nil || t.set.ID != setID {
		return errors.New("unknown set")
	}
	t.set.Questions = append(t.set.Questions, questions...)
	return nil
}

func (t *fakeTx) SetTotalQuestions(_ context.Context, setID int64, total int) error {
	if t.set == nil || t.set.ID != setID {
		return errors.New("unknown set")
	}
	t.set.Total = total
	return nil
}

func (t *fakeTx) Commit(context.Context) error {
	s := t.store
	if s.failCommit != nil {
		return s.failCommit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	t.done = true
	if t.set != nil {
		s.sets[t.set.ID] = t.set
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

// fakeSource is an in-memory FileSource.
type fakeSource struct {
	mu        sync.Mutex
	files     map[string][]byte
	downloads int
}

func (f *fakeSource) Download(_ context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	data, ok := f.files[fileID]
	if !ok {
		return nil, errors.New("drive: file not found")
	}
	return data, nil
}
