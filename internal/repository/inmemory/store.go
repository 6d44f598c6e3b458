// Package inmemory is a process-local UnitOfWork backend. It serves local
// development without Postgres and the service tests. Specifications are
// interpreted by type; an unknown specification is an error.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"haskify-be/internal/entity"
	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrUnsupportedSpecification = errors.New("inmemory: unsupported specification")

type tables struct {
	sessions    []entity.StudySession
	materials   []entity.Material
	chunks      []entity.MaterialChunk
	quizzes     []entity.QuizRecord
	attempts    []entity.QuizAttempt
	turns       []entity.ChatTurn
	transcripts []entity.Transcript
}

func (t *tables) clone() *tables {
	return &tables{
		sessions:    slices.Clone(t.sessions),
		materials:   slices.Clone(t.materials),
		chunks:      slices.Clone(t.chunks),
		quizzes:     slices.Clone(t.quizzes),
		attempts:    slices.Clone(t.attempts),
		turns:       slices.Clone(t.turns),
		transcripts: slices.Clone(t.transcripts),
	}
}

// Store holds the committed state. A transaction works on a private copy
// that replaces the committed state on Commit.
type Store struct {
	mu   sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: &tables{}}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// schema describes how generic specifications apply to one table.
type schema[T any] struct {
	id      func(*T) uuid.UUID
	match   func(*T, specification.Specification) (matched, handled bool)
	sortKey func(*T, string) (int64, bool)
}

func (s schema[T]) matches(row *T, spec specification.Specification) (bool, error) {
	switch v := spec.(type) {
	case specification.ByID:
		return s.id(row) == v.ID, nil
	}
	if s.match != nil {
		if ok, handled := s.match(row, spec); handled {
			return ok, nil
		}
	}
	return false, fmt.Errorf("%w: %T", ErrUnsupportedSpecification, spec)
}

func (s schema[T]) query(rows []T, specs []specification.Specification) ([]T, error) {
	var order *specification.OrderBy
	var page *specification.Pagination
	var filters []specification.Specification
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.OrderBy:
			order = &v
		case specification.Pagination:
			page = &v
		default:
			filters = append(filters, spec)
		}
	}

	out := make([]T, 0, len(rows))
	for i := range rows {
		keep := true
		for _, spec := range filters {
			ok, err := s.matches(&rows[i], spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rows[i])
		}
	}

	if order != nil {
		var zero T
		if s.sortKey == nil {
			return nil, fmt.Errorf("%w: order by %s", ErrUnsupportedSpecification, order.Field)
		}
		if _, ok := s.sortKey(&zero, order.Field); !ok {
			return nil, fmt.Errorf("%w: order by %s", ErrUnsupportedSpecification, order.Field)
		}
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := s.sortKey(&out[i], order.Field)
			b, _ := s.sortKey(&out[j], order.Field)
			if order.Desc {
				return a > b
			}
			return a < b
		})
	}

	if page != nil {
		if page.Offset >= len(out) {
			return []T{}, nil
		}
		out = out[page.Offset:]
		if page.Limit > 0 && page.Limit < len(out) {
			out = out[:page.Limit]
		}
	}
	return out, nil
}

func (s schema[T]) first(rows []T, specs []specification.Specification) (*T, error) {
	found, err := s.query(rows, specs)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}
