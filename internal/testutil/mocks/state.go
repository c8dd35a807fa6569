package mocks

import (
	"sync"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// FlagStore is an in-memory ports.FlagStore.
type FlagStore struct {
	mu    sync.Mutex
	value bool

	GetErr   error
	SetErr   error
	ClearErr error
}

// NewFlagStore creates an unset FlagStore.
func NewFlagStore() *FlagStore {
	return &FlagStore{}
}

// Get implements ports.FlagStore.
func (f *FlagStore) Get() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return false, f.GetErr
	}
	return f.value, nil
}

// Set implements ports.FlagStore.
func (f *FlagStore) Set() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.value = true
	return nil
}

// Clear implements ports.FlagStore.
func (f *FlagStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.value = false
	return nil
}

// Confirmer answers every question with Answer.
type Confirmer struct {
	mu     sync.Mutex
	asked  []string
	Answer bool
	Err    error
}

// NewConfirmer creates a Confirmer that answers answer.
func NewConfirmer(answer bool) *Confirmer {
	return &Confirmer{Answer: answer}
}

// Confirm implements ports.Confirmer.
func (c *Confirmer) Confirm(title, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, title)
	if c.Err != nil {
		return false, c.Err
	}
	return c.Answer, nil
}

// Asked returns the titles of every question asked.
func (c *Confirmer) Asked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.asked...)
}

var (
	_ ports.FlagStore = (*FlagStore)(nil)
	_ ports.Confirmer = (*Confirmer)(nil)
)
