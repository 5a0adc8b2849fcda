package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	d := r.s.lock()
	defer r.s.unlock()

	for _, u := range d.users {
		if u.Username == user.Username {
			return duplicate("uq_username")
		}
	}
	user.ID = d.id()
	user.CreatedAt = time.Now().UTC()
	d.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	d := r.s.lock()
	defer r.s.unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) List(_ context.Context, page reports.Page) ([]*models.User, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	all := make([]*models.User, 0, len(d.users))
	for _, u := range d.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, u := range d.users {
		if u.ID != user.ID && u.Username == user.Username {
			return duplicate("uq_username")
		}
	}
	d.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(d.users, id)
	d.deleteProjects(func(p models.Project) bool { return p.UserID == id })
	for tok, t := range d.tokens {
		if t.UserID == id {
			delete(d.tokens, tok)
		}
	}
	return nil
}

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(_ context.Context, project *models.Project) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.users[project.UserID]; !ok {
		return missingParent("projects_user_id_fkey")
	}
	for _, p := range d.projects {
		if p.UserID == project.UserID && p.Name == project.Name {
			return duplicate("uq_user_project_name")
		}
	}
	project.ID = d.id()
	project.CreatedAt = time.Now().UTC()
	d.projects[project.ID] = *project
	return nil
}

func (r *projectRepo) GetByID(_ context.Context, id int64) (*models.Project, error) {
	d := r.s.lock()
	defer r.s.unlock()

	p, ok := d.projects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *projectRepo) List(_ context.Context, userID *int64, page reports.Page) ([]*models.Project, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	var all []*models.Project
	for _, p := range d.projects {
		if userID != nil && p.UserID != *userID {
			continue
		}
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r *projectRepo) Update(_ context.Context, project *models.Project) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.projects[project.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, p := range d.projects {
		if p.ID != project.ID && p.UserID == existing.UserID && p.Name == project.Name {
			return duplicate("uq_user_project_name")
		}
	}
	existing.Name = project.Name
	d.projects[project.ID] = existing
	return nil
}

func (r *projectRepo) Delete(_ context.Context, id int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.projects[id]; !ok {
		return repositories.ErrNotFound
	}
	d.deleteProjects(func(p models.Project) bool { return p.ID == id })
	return nil
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(_ context.Context, token *models.Token) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.tokens[token.Token]; ok {
		return duplicate("uq_token")
	}
	if _, ok := d.users[token.UserID]; !ok {
		return missingParent("tokens_user_id_fkey")
	}
	if _, ok := d.projects[token.ProjectID]; !ok {
		return missingParent("tokens_project_id_fkey")
	}
	if token.Status == "" {
		token.Status = models.TokenStatusActive
	}
	token.ID = d.id()
	token.CreatedAt = time.Now().UTC()
	d.tokens[token.Token] = *token
	return nil
}

func (r *tokenRepo) GetByToken(_ context.Context, token string) (*models.Token, error) {
	d := r.s.lock()
	defer r.s.unlock()

	t, ok := d.tokens[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r *tokenRepo) List(_ context.Context, userID, projectID *int64, page reports.Page) ([]*models.Token, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	var all []*models.Token
	for _, t := range d.tokens {
		if userID != nil && t.UserID != *userID {
			continue
		}
		if projectID != nil && t.ProjectID != *projectID {
			continue
		}
		t := t
		all = append(all, &t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r *tokenRepo) UpdateStatus(_ context.Context, token string, status models.TokenStatus) error {
	d := r.s.lock()
	defer r.s.unlock()

	t, ok := d.tokens[token]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	d.tokens[token] = t
	return nil
}

func (r *tokenRepo) Delete(_ context.Context, token string) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.tokens[token]; !ok {
		return repositories.ErrNotFound
	}
	delete(d.tokens, token)
	return nil
}

type deviceRepo struct{ s *Store }

func (r *deviceRepo) insert(d *data, device *models.Device) error {
	if _, ok := d.projects[device.ProjectID]; !ok {
		return missingParent("devices_project_id_fkey")
	}
	device.CreatedAt = time.Now().UTC()
	d.devices[device.InstanceID] = *device
	return nil
}

func (r *deviceRepo) Create(_ context.Context, device *models.Device) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.devices[device.InstanceID]; ok {
		return duplicate("devices_pkey")
	}
	return r.insert(d, device)
}

func (r *deviceRepo) CreateIfAbsent(_ context.Context, device *models.Device) (bool, error) {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.devices[device.InstanceID]; ok {
		return false, nil
	}
	if err := r.insert(d, device); err != nil {
		return false, err
	}
	return true, nil
}

func (r *deviceRepo) GetForUpdate(_ context.Context, instanceID int64) (*models.Device, error) {
	d := r.s.lock()
	defer r.s.unlock()

	dev, ok := d.devices[instanceID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &dev, nil
}

func (r *deviceRepo) GetByID(_ context.Context, projectID, instanceID int64) (*models.Device, error) {
	d := r.s.lock()
	defer r.s.unlock()

	dev, ok := d.devices[instanceID]
	if !ok || dev.ProjectID != projectID {
		return nil, repositories.ErrNotFound
	}
	return &dev, nil
}

func (r *deviceRepo) Update(_ context.Context, device *models.Device) error {
	d := r.s.lock()
	defer r.s.unlock()

	existing, ok := d.devices[device.InstanceID]
	if !ok || existing.ProjectID != device.ProjectID {
		return repositories.ErrNotFound
	}
	device.CreatedAt = existing.CreatedAt
	d.devices[device.InstanceID] = *device
	return nil
}

func (r *deviceRepo) Delete(_ context.Context, projectID, instanceID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	dev, ok := d.devices[instanceID]
	if !ok || dev.ProjectID != projectID {
		return repositories.ErrNotFound
	}
	d.deleteDevices(func(dev models.Device) bool { return dev.InstanceID == instanceID })
	return nil
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Append(_ context.Context, session *models.DeviceSession) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.devices[session.InstanceID]; !ok {
		return missingParent("device_sessions_instance_id_fkey")
	}
	session.ID = d.id()
	session.CreatedAt = time.Now().UTC()
	d.sessions = append(d.sessions, *session)
	return nil
}

// SessionCount reports how many sessions are stored for an instance.
func (s *Store) SessionCount(instanceID int64) int64 {
	d := s.lock()
	defer s.unlock()

	var n int64
	for _, sess := range d.sessions {
		if sess.InstanceID == instanceID {
			n++
		}
	}
	return n
}

type logRepo struct{ s *Store }

func (r *logRepo) Create(_ context.Context, log *models.DeviceLog) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.devices[log.InstanceID]; !ok {
		return missingParent("device_logs_instance_id_fkey")
	}
	if _, ok := d.projects[log.ProjectID]; !ok {
		return missingParent("device_logs_project_id_fkey")
	}
	log.ID = d.id()
	log.CreatedAt = time.Now().UTC()
	stored := *log
	stored.Tag = nil
	d.logs[log.ID] = stored
	return nil
}

// withTag fills the tag name the way the Postgres join does.
func withTag(d *data, l models.DeviceLog) models.DeviceLog {
	l.Tag = nil
	if l.LogTagID != nil {
		if lt, ok := d.logTags[*l.LogTagID]; ok {
			tag := lt.Tag
			l.Tag = &tag
		}
	}
	return l
}

func (r *logRepo) GetByID(_ context.Context, projectID, logID int64) (*models.DeviceLog, error) {
	d := r.s.lock()
	defer r.s.unlock()

	l, ok := d.logs[logID]
	if !ok || l.ProjectID != projectID {
		return nil, repositories.ErrNotFound
	}
	l = withTag(d, l)
	return &l, nil
}

func (r *logRepo) Update(_ context.Context, log *models.DeviceLog) error {
	d := r.s.lock()
	defer r.s.unlock()

	l, ok := d.logs[log.ID]
	if !ok || l.ProjectID != log.ProjectID {
		return repositories.ErrNotFound
	}
	l.Message = log.Message
	l.Level = log.Level
	d.logs[log.ID] = l
	return nil
}

func (r *logRepo) Delete(_ context.Context, projectID, logID int64) error {
	d := r.s.lock()
	defer r.s.unlock()

	l, ok := d.logs[logID]
	if !ok || l.ProjectID != projectID {
		return repositories.ErrNotFound
	}
	delete(d.logs, logID)
	return nil
}

type logTagRepo struct{ s *Store }

func (r *logTagRepo) GetOrCreate(_ context.Context, projectID int64, tag string) (*models.LogTag, error) {
	d := r.s.lock()
	defer r.s.unlock()

	for _, lt := range d.logTags {
		if lt.ProjectID == projectID && lt.Tag == tag {
			lt := lt
			return &lt, nil
		}
	}
	if _, ok := d.projects[projectID]; !ok {
		return nil, missingParent("log_tags_project_id_fkey")
	}
	lt := models.LogTag{ID: d.id(), ProjectID: projectID, Tag: tag}
	d.logTags[lt.ID] = lt
	return &lt, nil
}

type deviceTagRepo struct{ s *Store }

func sameTag(a, b models.DeviceTag) bool {
	return a.InstanceID == b.InstanceID && a.TagName == b.TagName && a.TagValue == b.TagValue
}

func (r *deviceTagRepo) Create(_ context.Context, tag *models.DeviceTag) error {
	d := r.s.lock()
	defer r.s.unlock()

	if _, ok := d.devices[tag.InstanceID]; !ok {
		return missingParent("device_tags_instance_id_fkey")
	}
	for _, t := range d.deviceTags {
		if sameTag(t, *tag) {
			return duplicate("device_tags_pkey")
		}
	}
	d.deviceTags = append(d.deviceTags, *tag)
	return nil
}

func (r *deviceTagRepo) List(_ context.Context, projectID int64, instanceID *int64, page reports.Page) ([]*models.DeviceTag, int64, error) {
	d := r.s.lock()
	defer r.s.unlock()

	var all []*models.DeviceTag
	for _, t := range d.deviceTags {
		if t.ProjectID != projectID || (instanceID != nil && t.InstanceID != *instanceID) {
			continue
		}
		t := t
		all = append(all, &t)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.InstanceID != b.InstanceID {
			return a.InstanceID < b.InstanceID
		}
		if a.TagName != b.TagName {
			return a.TagName < b.TagName
		}
		return a.TagValue < b.TagValue
	})
	return paginate(all, page), int64(len(all)), nil
}

func (r *deviceTagRepo) find(d *data, tag models.DeviceTag) int {
	for i, t := range d.deviceTags {
		if sameTag(t, tag) && t.ProjectID == tag.ProjectID {
			return i
		}
	}
	return -1
}

func (r *deviceTagRepo) UpdateValue(_ context.Context, tag models.DeviceTag, newValue string) error {
	d := r.s.lock()
	defer r.s.unlock()

	i := r.find(d, tag)
	if i < 0 {
		return repositories.ErrNotFound
	}
	renamed := d.deviceTags[i]
	renamed.TagValue = newValue
	for j, t := range d.deviceTags {
		if j != i && sameTag(t, renamed) {
			return duplicate("device_tags_pkey")
		}
	}
	d.deviceTags[i] = renamed
	return nil
}

func (r *deviceTagRepo) Delete(_ context.Context, tag models.DeviceTag) error {
	d := r.s.lock()
	defer r.s.unlock()

	i := r.find(d, tag)
	if i < 0 {
		return repositories.ErrNotFound
	}
	d.deviceTags = append(d.deviceTags[:i], d.deviceTags[i+1:]...)
	return nil
}
