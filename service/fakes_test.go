package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- 内存版仓储，按 gorm 实现的语义行事 ---

type fakeStore struct {
	repos repository.Repos
}

func newFakeStore() (*fakeStore, *fakeUserRepo, *fakePaperRepo, *fakeDownloadRepo, *fakeVerificationRepo) {
	users := &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
	papers := &fakePaperRepo{papers: map[uuid.UUID]*models.Paper{}}
	downloads := &fakeDownloadRepo{}
	verifications := &fakeVerificationRepo{codes: map[uuid.UUID]*models.EmailVerification{}, byEmail: map[string]*models.EmailVerification{}}
	store := &fakeStore{repos: repository.Repos{
		Users:         users,
		Papers:        papers,
		Downloads:     downloads,
		Verifications: verifications,
	}}
	return store, users, papers, downloads, verifications
}

func (f *fakeStore) Repos() repository.Repos { return f.repos }

func (f *fakeStore) Transaction(fn func(repository.Repos) error) error {
	return fn(f.repos)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func (r *fakeUserRepo) Create(u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Update(u *models.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) Delete(id uuid.UUID) error   { delete(r.users, id); return nil }

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Count() (int64, error) { return int64(len(r.users)), nil }

func (r *fakeUserRepo) GetByAccount(account string) (*models.User, error) {
	for _, u := range r.users {
		if u.Account == account {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetForUpdate(id uuid.UUID) (*models.User, error) { return r.GetByID(id) }

func (r *fakeUserRepo) UpdateUsername(id uuid.UUID, username string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Username = username
	return nil
}

func (r *fakeUserRepo) UpdateAvatar(id uuid.UUID, avatarURL string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

func (r *fakeUserRepo) UpdatePasswordByEmail(email, hashedPassword string) error {
	u, err := r.GetByEmail(email)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) SpendTicket(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DownloadTickets < 1 {
		return false, nil
	}
	u.DownloadTickets--
	return true, nil
}

func (r *fakeUserRepo) GrantTickets(id uuid.UUID, n int) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.DownloadTickets += n
	return nil
}

func (r *fakeUserRepo) CheckIn(id uuid.UUID, day time.Time, reward int) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	if u.CheckedInOn(day) {
		return false, nil
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	u.LastCheckIn = &d
	u.DownloadTickets += reward
	return true, nil
}

type fakePaperRepo struct {
	papers map[uuid.UUID]*models.Paper
}

func (r *fakePaperRepo) Create(p *models.Paper) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.papers[p.ID] = p
	return nil
}

func (r *fakePaperRepo) GetByID(id uuid.UUID) (*models.Paper, error) {
	p, ok := r.papers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakePaperRepo) Update(p *models.Paper) error { r.papers[p.ID] = p; return nil }
func (r *fakePaperRepo) Delete(id uuid.UUID) error    { delete(r.papers, id); return nil }

func (r *fakePaperRepo) List(limit, offset int) ([]*models.Paper, error) {
	var out []*models.Paper
	for _, p := range r.papers {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePaperRepo) Count() (int64, error) { return int64(len(r.papers)), nil }

func (r *fakePaperRepo) GetForUpdate(id uuid.UUID) (*models.Paper, error) { return r.GetByID(id) }

func (r *fakePaperRepo) UpdateStatus(id uuid.UUID, status string) error {
	p, ok := r.papers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *fakePaperRepo) IncrementDownloads(id uuid.UUID) error {
	p, ok := r.papers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.DownloadCount++
	return nil
}

func (r *fakePaperRepo) ListApproved(opts repository.PaperListOptions) ([]*models.Paper, int64, error) {
	var out []*models.Paper
	for _, p := range r.papers {
		if p.Status != models.PaperStatusApproved {
			continue
		}
		if opts.Subject != "" && p.Subject != opts.Subject {
			continue
		}
		if opts.Teacher != "" && p.Teacher != opts.Teacher {
			continue
		}
		if opts.Search != "" && !strings.Contains(p.Title, opts.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakePaperRepo) DistinctSubjects() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.papers {
		if p.Status == models.PaperStatusApproved && !seen[p.Subject] {
			seen[p.Subject] = true
			out = append(out, p.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakePaperRepo) DistinctTeachers() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.papers {
		if p.Status == models.PaperStatusApproved && p.Teacher != "" && !seen[p.Teacher] {
			seen[p.Teacher] = true
			out = append(out, p.Teacher)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakePaperRepo) ListByUploader(uploaderID uuid.UUID) ([]*models.Paper, error) {
	var out []*models.Paper
	for _, p := range r.papers {
		if p.UploaderID == uploaderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaperRepo) ListPending() ([]*models.Paper, error) {
	var out []*models.Paper
	for _, p := range r.papers {
		if p.Status == models.PaperStatusPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePaperRepo) CountPending() (int64, error) {
	var n int64
	for _, p := range r.papers {
		if p.Status == models.PaperStatusPending {
			n++
		}
	}
	return n, nil
}

type fakeDownloadRepo struct {
	records []*models.Download
}

func (r *fakeDownloadRepo) Create(d *models.Download) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	r.records = append(r.records, d)
	return nil
}

func (r *fakeDownloadRepo) GetByID(id uuid.UUID) (*models.Download, error) {
	for _, d := range r.records {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDownloadRepo) Update(d *models.Download) error { return nil }
func (r *fakeDownloadRepo) Delete(id uuid.UUID) error       { return nil }

func (r *fakeDownloadRepo) List(limit, offset int) ([]*models.Download, error) {
	return r.records, nil
}

func (r *fakeDownloadRepo) Count() (int64, error) { return int64(len(r.records)), nil }

func (r *fakeDownloadRepo) Exists(userID, paperID uuid.UUID) (bool, error) {
	for _, d := range r.records {
		if d.UserID == userID && d.PaperID == paperID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDownloadRepo) Record(userID, paperID uuid.UUID) error {
	return r.Create(&models.Download{UserID: userID, PaperID: paperID})
}

func (r *fakeDownloadRepo) RecordIfAbsent(userID, paperID uuid.UUID) error {
	exists, _ := r.Exists(userID, paperID)
	if exists {
		return nil
	}
	return r.Record(userID, paperID)
}

func (r *fakeDownloadRepo) ListByUser(userID uuid.UUID) ([]*models.Download, error) {
	var out []*models.Download
	for _, d := range r.records {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDownloadRepo) countFor(userID, paperID uuid.UUID) int {
	n := 0
	for _, d := range r.records {
		if d.UserID == userID && d.PaperID == paperID {
			n++
		}
	}
	return n
}

type fakeVerificationRepo struct {
	codes   map[uuid.UUID]*models.EmailVerification
	byEmail map[string]*models.EmailVerification
}

func (r *fakeVerificationRepo) Upsert(email, code string, expiresAt time.Time) error {
	v := &models.EmailVerification{Email: email, Code: code, ExpiresAt: expiresAt}
	v.ID = uuid.New()
	r.byEmail[email] = v
	r.codes[v.ID] = v
	return nil
}

func (r *fakeVerificationRepo) GetByEmail(email string) (*models.EmailVerification, error) {
	v, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *fakeVerificationRepo) DeleteByEmail(email string) error {
	if v, ok := r.byEmail[email]; ok {
		delete(r.codes, v.ID)
		delete(r.byEmail, email)
	}
	return nil
}

// --- 协作方的假实现 ---

type notifierEvent struct {
	Event   string
	UserID  uuid.UUID // uuid.Nil 表示广播
	Payload interface{}
}

type fakeNotifier struct {
	events []notifierEvent
}

func (n *fakeNotifier) Broadcast(event string, payload interface{}) {
	n.events = append(n.events, notifierEvent{Event: event, Payload: payload})
}

func (n *fakeNotifier) ToUser(userID uuid.UUID, event string, payload interface{}) {
	n.events = append(n.events, notifierEvent{Event: event, UserID: userID, Payload: payload})
}

func (n *fakeNotifier) eventNames() []string {
	var out []string
	for _, e := range n.events {
		out = append(out, e.Event)
	}
	return out
}

type fakeFileStore struct {
	saved   map[string][]byte
	saveErr error
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: map[string][]byte{}}
}

func (f *fakeFileStore) Save(objectName string, data []byte, contentType string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[objectName] = data
	return nil
}

func (f *fakeFileStore) PresignedDownload(objectName, filename string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://minio.test/%s?dl=%s", objectName, filename), nil
}

func (f *fakeFileStore) PresignedPreview(objectName, contentType string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://minio.test/%s?inline=1", objectName), nil
}

type fakeMailer struct {
	verifications []string // email:code
	resets        []string
	err           error
}

func (m *fakeMailer) SendVerificationCode(email, code string) error {
	if m.err != nil {
		return m.err
	}
	m.verifications = append(m.verifications, email+":"+code)
	return nil
}

func (m *fakeMailer) SendPasswordResetCode(email, code string) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, email+":"+code)
	return nil
}
