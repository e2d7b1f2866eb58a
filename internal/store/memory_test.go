package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spigell/cv-matcher/internal/ai"
)

func candidate(name, phoneKey, hash string) *Candidate {
	return &Candidate{
		CandidateProfile: ai.CandidateProfile{CandidateName: name},
		PhoneKey:         phoneKey,
		FileHash:         hash,
	}
}

func TestMemoryCandidates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := candidate("Asha", "+919876543210", "h1")
	if err := m.InsertCandidate(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID.IsZero() || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned: %+v", first)
	}

	if err := m.InsertCandidates(ctx, []*Candidate{candidate("Ben", "", ""), candidate("Chen", "", "")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byHash, err := m.FindCandidateByFileHash(ctx, "h1")
	if err != nil || byHash.ID != first.ID {
		t.Fatalf("expected lookup by hash, got %+v, %v", byHash, err)
	}

	byPhone, err := m.FindCandidateByPhone(ctx, "+919876543210")
	if err != nil || byPhone.CandidateName != "Asha" {
		t.Fatalf("expected lookup by phone, got %+v, %v", byPhone, err)
	}

	if _, err := m.FindCandidateByPhone(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty phone must not match candidates without phone, got %v", err)
	}

	page, total, err := m.ListCandidates(ctx, Page{Number: 2, Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].CandidateName != "Chen" {
		t.Fatalf("unexpected page: total=%d %+v", total, page)
	}

	all, _ := m.AllCandidates(ctx)
	names := []string{}
	for _, c := range all {
		names = append(names, c.CandidateName)
	}
	if len(names) != 3 || names[0] != "Asha" || names[1] != "Ben" || names[2] != "Chen" {
		t.Fatalf("expected insertion order, got %v", names)
	}

	// returned values are copies
	all[0].CandidateName = "changed"
	again, _ := m.GetCandidate(ctx, first.ID)
	if again.CandidateName != "Asha" {
		t.Fatalf("store was mutated through a returned value")
	}

	if err := m.SetHasResume(ctx, first.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ = m.GetCandidate(ctx, first.ID)
	if !again.HasResume {
		t.Fatalf("expected has_resume to be set")
	}

	again.Department = "Engineering"
	if err := m.UpdateCandidate(ctx, again); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, _ := m.GetCandidate(ctx, first.ID)
	if updated.Department != "Engineering" {
		t.Fatalf("expected update to be stored")
	}

	missing := candidate("Ghost", "", "")
	missing.ID = primitive.NewObjectID()
	if err := m.UpdateCandidate(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryMatchingsAndCascade(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c1, c2 := candidate("Asha", "", ""), candidate("Ben", "", "")
	_ = m.InsertCandidates(ctx, []*Candidate{c1, c2})

	j1, j2 := &Job{JobName: "Go developer"}, &Job{JobName: "QA"}
	_ = m.InsertJob(ctx, j1)
	_ = m.InsertJob(ctx, j2)

	for _, pair := range [][2]primitive.ObjectID{{c1.ID, j1.ID}, {c2.ID, j1.ID}, {c1.ID, j2.ID}} {
		if err := m.UpsertMatching(ctx, &Matching{CandidateID: pair[0], JobID: pair[1], Score: 50}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	first, err := m.GetMatching(ctx, c1.ID, j1.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.UpsertMatching(ctx, &Matching{CandidateID: c1.ID, JobID: j1.ID, Score: 90}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replaced, _ := m.GetMatching(ctx, c1.ID, j1.ID)
	if replaced.ID != first.ID || replaced.Score != 90 || !replaced.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected upsert to keep identity, got %+v", replaced)
	}

	all, _ := m.AllMatchings(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 matchings, got %d", len(all))
	}

	byJob, total, _ := m.ListMatchings(ctx, MatchingFilter{JobID: j1.ID, Page: Page{Number: 1, Size: 10}})
	if total != 2 || len(byJob) != 2 {
		t.Fatalf("unexpected filtered listing: total=%d len=%d", total, len(byJob))
	}

	if err := m.MarkShortlistNotified(ctx, c2.ID, j1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notified, _ := m.GetMatching(ctx, c2.ID, j1.ID)
	if !notified.ShortlistNotified {
		t.Fatalf("expected shortlist flag")
	}

	if err := m.DeleteCandidate(ctx, c1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.GetMatching(ctx, c1.ID, j2.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected candidate matchings to be removed, got %v", err)
	}

	if err := m.DeleteJob(ctx, j1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	left, _ := m.AllMatchings(ctx)
	if len(left) != 0 {
		t.Fatalf("expected job matchings to be removed, got %d", len(left))
	}

	if err := m.DeleteJob(ctx, j1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("not-an-id"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	id := primitive.NewObjectID()
	parsed, err := ParseID(id.Hex())
	if err != nil || parsed != id {
		t.Fatalf("unexpected parse result %v, %v", parsed, err)
	}
}
