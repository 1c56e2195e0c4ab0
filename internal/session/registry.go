// Package session provides registry of per-browser workspace controllers with idle eviction
package session

import (
	"context"
	"sync"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/webui"
	"github.com/UnendingLoop/DeSilhouette/internal/workspace"
	"github.com/google/uuid"
)

type Session struct {
	ID       string
	View     *webui.View
	Ctrl     *workspace.Controller
	lastSeen time.Time
}

// ControllerFactory - собирает контроллер под конкретную сессию и её представление
type ControllerFactory func(id string, ui workspace.UI) *workspace.Controller

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  ControllerFactory
	now      func() time.Time
}

func NewRegistry(ttl time.Duration, factory ControllerFactory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
	}
}

// Create - новая сессия уже проинициализирована
func (r *Registry) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	view := webui.NewView()
	ctrl := r.factory(id, view)
	ctrl.Init(ctx)

	s := &Session{ID: id, View: view, Ctrl: ctrl, lastSeen: r.now()}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return model.ErrSessionNotFound
	}
	s.Ctrl.Close(ctx)
	return nil
}

// Sweep - закрывает простаивающие сессии, занятые обработкой не трогает
func (r *Registry) Sweep(ctx context.Context, now time.Time) int {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) < r.ttl || s.Ctrl.IsProcessing() {
			continue
		}
		expired = append(expired, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Ctrl.Close(ctx)
	}
	return len(expired)
}

// CloseAll - при остановке сервера
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Ctrl.Close(ctx)
	}
	// фоновая запись истории должна успеть до закрытия кафки и базы
	for _, s := range all {
		s.Ctrl.Wait()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
