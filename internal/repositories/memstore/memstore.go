// Package memstore is an in-memory repositories.Store for tests. It mirrors
// the Postgres repositories' semantics: project scoping, cascading deletes,
// unique constraints and the report aggregations.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

var _ repositories.Store = (*Store)(nil)

type data struct {
	nextID     int64
	users      map[int64]models.User
	projects   map[int64]models.Project
	tokens     map[string]models.Token
	devices    map[int64]models.Device
	sessions   []models.DeviceSession
	logs       map[int64]models.DeviceLog
	logTags    map[int64]models.LogTag
	deviceTags []models.DeviceTag
}

func newData() *data {
	return &data{
		users:    map[int64]models.User{},
		projects: map[int64]models.Project{},
		tokens:   map[string]models.Token{},
		devices:  map[int64]models.Device{},
		logs:     map[int64]models.DeviceLog{},
		logTags:  map[int64]models.LogTag{},
	}
}

// clone copies every table. Rows are values, so a shallow copy of each
// container is enough; pointer fields inside rows are never mutated in place.
func (d *data) clone() *data {
	c := &data{
		nextID:     d.nextID,
		users:      make(map[int64]models.User, len(d.users)),
		projects:   make(map[int64]models.Project, len(d.projects)),
		tokens:     make(map[string]models.Token, len(d.tokens)),
		devices:    make(map[int64]models.Device, len(d.devices)),
		sessions:   append([]models.DeviceSession(nil), d.sessions...),
		logs:       make(map[int64]models.DeviceLog, len(d.logs)),
		logTags:    make(map[int64]models.LogTag, len(d.logTags)),
		deviceTags: append([]models.DeviceTag(nil), d.deviceTags...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	for k, v := range d.devices {
		c.devices[k] = v
	}
	for k, v := range d.logs {
		c.logs[k] = v
	}
	for k, v := range d.logTags {
		c.logTags[k] = v
	}
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// Store is safe for concurrent use. Transactions are serialized and rolled
// back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *data
}

func New() *Store {
	return &Store{data: newData()}
}

func (s *Store) Repos() repositories.Repositories {
	return repositories.Repositories{
		Users:    &userRepo{s},
		Projects: &projectRepo{s},
		Tokens:   &tokenRepo{s},
		Devices:  &deviceRepo{s},
		Sessions: &sessionRepo{s},
		Logs:     &logRepo{s},
		LogTags:  &logTagRepo{s},
		Tags:     &deviceTagRepo{s},
		Reports:  &reportRepo{s},
	}
}

func (s *Store) InTx(_ context.Context, fn func(repositories.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) lock() *data {
	s.mu.Lock()
	return s.data
}

func (s *Store) unlock() {
	s.mu.Unlock()
}

func duplicate(constraint string) error {
	return fmt.Errorf("insert: %w (%s)", repositories.ErrDuplicate, constraint)
}

func missingParent(constraint string) error {
	return fmt.Errorf("insert: %w (%s)", repositories.ErrNotFound, constraint)
}

func paginate[T any](items []T, page reports.Page) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// deleteDevices removes matching devices with their logs, sessions and
// tags.
func (d *data) deleteDevices(match func(models.Device) bool) {
	for id, dev := range d.devices {
		if !match(dev) {
			continue
		}
		delete(d.devices, id)
		for logID, l := range d.logs {
			if l.InstanceID == id {
				delete(d.logs, logID)
			}
		}
		d.sessions = filter(d.sessions, func(s models.DeviceSession) bool { return s.InstanceID != id })
		d.deviceTags = filter(d.deviceTags, func(t models.DeviceTag) bool { return t.InstanceID != id })
	}
}

func (d *data) deleteProjects(match func(models.Project) bool) {
	for id, p := range d.projects {
		if !match(p) {
			continue
		}
		delete(d.projects, id)
		d.deleteDevices(func(dev models.Device) bool { return dev.ProjectID == id })
		for tagID, lt := range d.logTags {
			if lt.ProjectID == id {
				delete(d.logTags, tagID)
			}
		}
		for logID, l := range d.logs {
			if l.ProjectID == id {
				delete(d.logs, logID)
			}
		}
		for tok, t := range d.tokens {
			if t.ProjectID == id {
				delete(d.tokens, tok)
			}
		}
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
