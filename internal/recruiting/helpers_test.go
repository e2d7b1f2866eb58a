package recruiting

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/queue"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/storage"
	"github.com/spigell/cv-matcher/internal/store"
)

type fakeAnalyzer struct {
	candidate *ai.CandidateProfile
	job       *ai.JobProfile
	matching  map[string]any
	err       error

	cvTexts []string
}

func (f *fakeAnalyzer) AnalyzeCandidate(_ context.Context, cvText string) (*ai.CandidateProfile, error) {
	f.cvTexts = append(f.cvTexts, cvText)
	if f.err != nil {
		return nil, f.err
	}
	p := *f.candidate
	return &p, nil
}

func (f *fakeAnalyzer) AnalyzeJob(context.Context, string) (*ai.JobProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.job
	return &p, nil
}

func (f *fakeAnalyzer) AnalyzeMatching(context.Context, *ai.JobProfile, *ai.CandidateProfile) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matching, nil
}

type sentMessage struct {
	to   string
	body string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[string]bool
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return "", errors.New("undeliverable")
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return "SM1", nil
}

type fakeMedia struct {
	data map[string][]byte
}

func (f *fakeMedia) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := f.data[url]
	if !ok {
		return nil, errors.New("404")
	}
	return data, nil
}

type fakePublisher struct {
	tasks []queue.Task
}

func (f *fakePublisher) Publish(_ context.Context, task queue.Task) error {
	f.tasks = append(f.tasks, task)
	return nil
}

type fixture struct {
	svc      *Service
	fs       afero.Fs
	store    *store.Memory
	analyzer *fakeAnalyzer
	sender   *fakeSender
	media    *fakeMedia
	queue    *fakePublisher
}

func newFixture(t *testing.T, mode scoring.Mode) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	files, err := storage.NewLocal(fs, "uploads")
	require.NoError(t, err)

	f := &fixture{
		fs:    fs,
		store: store.NewMemory(),
		analyzer: &fakeAnalyzer{
			candidate: &ai.CandidateProfile{
				CandidateName:  "Asha Rao",
				Email:          "asha@example.com",
				PhoneNumber:    "9876543210",
				TechnicalSkill: []string{"Go"},
			},
			job:      &ai.JobProfile{TechnicalSkill: []string{"Go"}},
			matching: fullPayload(),
		},
		sender: &fakeSender{failTo: map[string]bool{}},
		media:  &fakeMedia{data: map[string][]byte{}},
		queue:  &fakePublisher{},
	}

	f.svc = New(Deps{
		Store:      f.store,
		Files:      files,
		Analyzer:   f.analyzer,
		Aggregator: scoring.NewAggregator(scoring.DefaultRubric(), mode),
		Sender:     f.sender,
		Media:      f.media,
		Queue:      f.queue,
		Logger:     zap.NewNop(),
	})
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	return f
}

func fullPayload() map[string]any {
	return map[string]any{
		"degree":          map[string]any{"score": 80.0, "comment": "BSc"},
		"experience":      map[string]any{"score": 70.0},
		"technical_skill": map[string]any{"score": 90.0},
		"responsibility":  map[string]any{"score": 60.0},
		"certificate":     map[string]any{"score": 100.0},
		"soft_skill":      map[string]any{"score": 50.0},
		"summary_comment": "Strong Go background",
	}
}

func docx(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			`<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func (f *fixture) addCandidate(t *testing.T, name, phone string, hasResume bool) *store.Candidate {
	t.Helper()

	c := &store.Candidate{
		CandidateProfile: ai.CandidateProfile{CandidateName: name, Email: name + "@example.com", PhoneNumber: phone},
		HasResume:        hasResume,
	}
	if phone != "" {
		c.PhoneKey = "+91" + phone
	}
	require.NoError(t, f.store.InsertCandidate(context.Background(), c))
	return c
}

func (f *fixture) addJob(t *testing.T, name string) *store.Job {
	t.Helper()

	j := &store.Job{JobName: name, JobDescription: "<p>Build <b>Go</b> services</p>"}
	require.NoError(t, f.store.InsertJob(context.Background(), j))
	return j
}

func (f *fixture) addMatching(t *testing.T, c *store.Candidate, j *store.Job, score float64) {
	t.Helper()
	require.NoError(t, f.store.UpsertMatching(context.Background(), &store.Matching{
		CandidateID: c.ID, JobID: j.ID, CandidateName: c.CandidateName, JobName: j.JobName, Score: score,
	}))
}
