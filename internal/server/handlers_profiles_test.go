package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-assistant/internal/db"
	"github.com/jonathan/resume-assistant/internal/resume"
)

const draftedResume = `{
  "personalDetails": {"resume_job_title": "Senior Data Engineer", "summary": "Builds reliable pipelines."},
  "jobs": [{"jobTitle": "Data Engineer", "employer": "Initech", "description": "Moved batch jobs to streaming.", "city": "Austin"}],
  "skills": [{"skill_name": "Kafka", "proficiency_level": "Advanced"}]
}`

// memoryProfiles is an in-memory ProfileStore.
type memoryProfiles struct {
	mu   sync.Mutex
	rows map[string]db.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{rows: make(map[string]db.Profile)}
}

func (m *memoryProfiles) SaveProfile(_ context.Context, userID uuid.UUID, p resume.Profile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row, ok := m.rows[p.ID]
	if ok && row.UserID != userID {
		return "", db.ErrProfileNotFound
	}
	if !ok {
		row.CreatedAt = time.Now()
	}
	row.ID, row.UserID, row.Profile, row.UpdatedAt = p.ID, userID, p, time.Now()
	m.rows[p.ID] = row
	return p.ID, nil
}

func (m *memoryProfiles) GetProfile(_ context.Context, userID uuid.UUID, id string) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.UserID != userID {
		return nil, db.ErrProfileNotFound
	}
	return &row, nil
}

func (m *memoryProfiles) ListProfiles(_ context.Context, userID uuid.UUID) ([]db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []db.Profile{}
	for _, row := range m.rows {
		if row.UserID == userID {
			list = append(list, row)
		}
	}
	return list, nil
}

func (m *memoryProfiles) DeleteProfile(_ context.Context, userID uuid.UUID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.UserID != userID {
		return db.ErrProfileNotFound
	}
	delete(m.rows, id)
	return nil
}

func analystProfile() resume.Profile {
	return resume.Profile{
		FirstName: "Priya",
		LastName:  "Natarajan",
		Email:     "priya@example.com",
		ContactNo: "555-0142",
		Country:   "USA",
		City:      "Austin",
		Jobs:      []resume.Job{{JobTitle: "Data Engineer", Employer: "Initech", City: "Austin"}},
		Educations: []resume.Education{
			{School: "UT Austin", Degree: "BSc", Field: "Statistics", City: "Austin"},
		},
	}
}

func TestProfiles(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	w := env.do(t, http.MethodPost, "/profiles", analystProfile(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]string](t, w)["id"]
	require.NotEmpty(t, id)

	w = env.do(t, http.MethodGet, "/profiles/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[db.Profile](t, w)
	assert.Equal(t, "Priya", stored.Profile.FirstName)
	require.Len(t, stored.Profile.Jobs, 1)

	updated := analystProfile()
	updated.City = "Denver"
	updated.Jobs = nil
	w = env.do(t, http.MethodPut, "/profiles/"+id, updated, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	list := decode[map[string][]db.Profile](t, env.do(t, http.MethodGet, "/profiles", nil, token))
	require.Len(t, list["profiles"], 1)
	assert.Equal(t, "Denver", list["profiles"][0].Profile.City)
	assert.Empty(t, list["profiles"][0].Profile.Jobs, "an update replaces the lists")

	other := env.token(t, uuid.New())
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/profiles/"+id, nil, other).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/profiles/"+id, updated, other).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/profiles/"+id, nil, other).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/profiles/"+id, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/profiles/"+id, nil, token).Code)
}

func TestProfiles_UpdateUnknownIsNotCreated(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	w := env.do(t, http.MethodPut, "/profiles/missing", analystProfile(), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, env.profiles.rows)
}

func TestProfiles_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{"empty body", nil, "empty"},
		{"missing last name", `{"firstname":"Priya","email":"priya@example.com"}`, "LastName"},
		{"bad email", `{"firstname":"Priya","lastname":"N","email":"priya"}`, "Email"},
		{"not json", `{"firstname":`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/profiles", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantField)
		})
	}
	assert.Empty(t, env.profiles.rows)
}

func TestProfiles_Access(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/profiles", nil, "").Code)

	env = newTestEnv(t, func(d *Deps) { d.Profiles = nil })
	w := env.do(t, http.MethodGet, "/profiles", nil, env.token(t, uuid.New()))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateResume(t *testing.T) {
	env := newTestEnv(t)
	env.client.generated = draftedResume
	uid := uuid.New()
	token := env.token(t, uid)

	id := decode[map[string]string](t, env.do(t, http.MethodPost, "/profiles", analystProfile(), token))["id"]

	w := env.do(t, http.MethodPost, "/profiles/"+id+"/resumes", GenerateRequest{
		JobTitle:    "Senior Data Engineer",
		Employer:    "Globex",
		PostDetails: "Own our streaming platform.",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[GenerateResponse](t, w)
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, resp.ID, resp.Document.ID)
	assert.Equal(t, "Priya", resp.Document.PersonalDetails.FirstName)
	assert.Equal(t, "Builds reliable pipelines.", resp.Document.PersonalDetails.Summary)
	assert.Equal(t, "Moved batch jobs to streaming.", resp.Document.Jobs[0].Description)
	assert.Equal(t, "UT Austin", resp.Document.Educations[0].School)
	require.NotNil(t, resp.Document.Target)
	assert.Equal(t, "Globex", resp.Document.Target.Employer)
	assert.Empty(t, resp.Warnings)

	stored, err := env.resumes.GetResume(context.Background(), uid, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kafka", stored.Document.Skills[0].Name)
}

func TestGenerateResume_JobURL(t *testing.T) {
	posting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main><h1>Analytics Engineer</h1><p>Model our warehouse.</p></main></body></html>`))
	}))
	defer posting.Close()

	env := newTestEnv(t)
	env.client.generated = draftedResume
	token := env.token(t, uuid.New())
	id := decode[map[string]string](t, env.do(t, http.MethodPost, "/profiles", analystProfile(), token))["id"]

	// the scripted extraction returns the drafted resume, which has no job
	// title, so the given title is required alongside the posting
	w := env.do(t, http.MethodPost, "/profiles/"+id+"/resumes", GenerateRequest{JobURL: posting.URL}, token)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "jd_job_title")

	w = env.do(t, http.MethodPost, "/profiles/"+id+"/resumes", GenerateRequest{JobTitle: "Analytics Engineer", JobURL: posting.URL}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[GenerateResponse](t, w)
	require.NotNil(t, resp.Document.Target)
	assert.Equal(t, posting.URL, resp.Document.Target.JobURL)
	assert.Contains(t, resp.Document.Target.PostDetails, "Model our warehouse.")
}

func TestGenerateResume_Failures(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())
	id := decode[map[string]string](t, env.do(t, http.MethodPost, "/profiles", analystProfile(), token))["id"]
	path := "/profiles/" + id + "/resumes"
	body := GenerateRequest{JobTitle: "Data Engineer"}

	// no scripted output: the model call fails
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, path, body, token).Code)

	env.client.generated = `{"jobs": "not a list"}`
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, path, body, token).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, path, `{}`, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/profiles/missing/resumes", body, token).Code)
	assert.Empty(t, env.resumes.rows)

	env = newTestEnv(t, func(d *Deps) { d.Resumes = nil })
	w := env.do(t, http.MethodPost, path, body, env.token(t, uuid.New()))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
