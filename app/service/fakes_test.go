package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fiber/edurisk/app/model"
	"fiber/edurisk/app/repo"
)

// In-memory repository fakes for handler tests. They mirror the filter
// semantics of the Mongo implementations, including the pending-only
// compare-and-set on sessions.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) FindAll(role, search string) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) FindMentors() ([]model.User, error) {
	return r.FindAll(model.RoleMentor, "")
}

func (r *fakeUserRepo) FindAssignedStudents(mentorID primitive.ObjectID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role == model.RoleStudent && u.IsActive &&
			u.AssignedMentor != nil && *u.AssignedMentor == mentorID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByIDs(ids []primitive.ObjectID) (map[primitive.ObjectID]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[primitive.ObjectID]model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountActiveByRole(role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repo.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(id primitive.ObjectID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.RefreshToken = token
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Delete(id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[primitive.ObjectID]model.Student
}

func newFakeStudentRepo(students ...model.Student) *fakeStudentRepo {
	r := &fakeStudentRepo{students: make(map[primitive.ObjectID]model.Student)}
	for _, st := range students {
		r.students[st.ID] = st
	}
	return r
}

func (r *fakeStudentRepo) Create(student *model.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student.ID = primitive.NewObjectID()
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) Upsert(student *model.Student) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, st := range r.students {
		if st.UserID == student.UserID {
			student.ID = id
			student.StudentID = st.StudentID
			student.CreatedAt = st.CreatedAt
			student.UpdatedAt = time.Now()
			r.students[id] = *student
			return student, nil
		}
	}
	student.ID = primitive.NewObjectID()
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now
	r.students[student.ID] = *student
	return student, nil
}

func (r *fakeStudentRepo) FindByID(id primitive.ObjectID) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &st, nil
}

func (r *fakeStudentRepo) FindByUserID(userID primitive.ObjectID) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.students {
		if st.UserID == userID {
			st := st
			return &st, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeStudentRepo) FindByUserIDs(userIDs []primitive.ObjectID) ([]model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []model.Student
	for _, st := range r.students {
		if wanted[st.UserID] {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) FindAll() ([]model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Student, 0, len(r.students))
	for _, st := range r.students {
		out = append(out, st)
	}
	return out, nil
}

func (r *fakeStudentRepo) DeleteByUserID(userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, st := range r.students {
		if st.UserID == userID {
			delete(r.students, id)
		}
	}
	return nil
}

type fakePredictionRepo struct {
	mu          sync.Mutex
	predictions []model.Prediction
}

func (r *fakePredictionRepo) Create(prediction *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prediction.ID = primitive.NewObjectID()
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = time.Now()
	}
	r.predictions = append(r.predictions, *prediction)
	return nil
}

func (r *fakePredictionRepo) FindByID(id primitive.ObjectID) (*model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.predictions {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakePredictionRepo) LatestByUserID(userID primitive.ObjectID) (*model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Prediction
	for i := range r.predictions {
		p := r.predictions[i]
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = &p
		}
	}
	if latest == nil {
		return nil, repo.ErrNotFound
	}
	return latest, nil
}

func (r *fakePredictionRepo) LatestPerUser() (map[primitive.ObjectID]model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[primitive.ObjectID]model.Prediction)
	for _, p := range r.predictions {
		cur, ok := out[p.UserID]
		if !ok || p.CreatedAt.After(cur.CreatedAt) {
			out[p.UserID] = p
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) TrendByUserID(userID primitive.ObjectID, limit int) ([]model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Prediction
	for _, p := range r.predictions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePredictionRepo) History(userIDs []primitive.ObjectID, page, limit int) ([]model.Prediction, int64, error) {
	rows, err := r.FindForExport(userIDs)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(rows))
	start := (page - 1) * limit
	if start > len(rows) {
		start = len(rows)
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (r *fakePredictionRepo) FindForExport(userIDs []primitive.ObjectID) ([]model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var wanted map[primitive.ObjectID]bool
	if userIDs != nil {
		wanted = make(map[primitive.ObjectID]bool, len(userIDs))
		for _, id := range userIDs {
			wanted[id] = true
		}
	}
	var out []model.Prediction
	for _, p := range r.predictions {
		if wanted == nil || wanted[p.UserID] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePredictionRepo) Recent(limit int) ([]model.Prediction, error) {
	out, err := r.FindForExport(nil)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePredictionRepo) CountByUserID(userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.predictions {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakePredictionRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.predictions)), nil
}

func (r *fakePredictionRepo) DeleteByUserID(userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.predictions[:0]
	for _, p := range r.predictions {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.predictions = kept
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]model.Session
}

func newFakeSessionRepo(sessions ...model.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: make(map[primitive.ObjectID]model.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Create(session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) FindByID(id primitive.ObjectID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) FindByStudent(studentID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error) {
	return r.filter(func(s model.Session) bool { return s.StudentID == studentID }, statuses)
}

func (r *fakeSessionRepo) FindByMentor(mentorID primitive.ObjectID, statuses []model.SessionStatus) ([]model.Session, error) {
	return r.filter(func(s model.Session) bool { return s.MentorID == mentorID }, statuses)
}

func (r *fakeSessionRepo) FindScheduledFrom(mentorID primitive.ObjectID, from time.Time) ([]model.Session, error) {
	out, err := r.filter(func(s model.Session) bool {
		return s.MentorID == mentorID && !s.ScheduledDate.Before(from)
	}, []model.SessionStatus{model.SessionScheduled})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

func (r *fakeSessionRepo) filter(match func(model.Session) bool, statuses []model.SessionStatus) ([]model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	allowed := make(map[model.SessionStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	var out []model.Session
	for _, s := range r.sessions {
		if match(s) && allowed[s.Status] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ApproveIfPending(id primitive.ObjectID, scheduledDate *time.Time, duration *int) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != model.SessionPending {
		return nil, repo.ErrAlreadyProcessed
	}
	s.Status = model.SessionScheduled
	if scheduledDate != nil {
		s.ScheduledDate = *scheduledDate
	}
	if duration != nil {
		s.Duration = *duration
	}
	r.sessions[id] = s
	return &s, nil
}

func (r *fakeSessionRepo) RejectIfPending(id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != model.SessionPending {
		return repo.ErrAlreadyProcessed
	}
	s.Status = model.SessionCancelled
	r.sessions[id] = s
	return nil
}

func (r *fakeSessionRepo) DeleteByStudent(studentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.StudentID == studentID {
			delete(r.sessions, id)
		}
	}
	return nil
}
