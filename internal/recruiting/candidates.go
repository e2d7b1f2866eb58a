package recruiting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/document"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/store"
)

// Upload is a résumé file received from a client.
type Upload struct {
	FileName string
	Data     []byte
}

// CandidatePage is one page of the candidate listing.
type CandidatePage struct {
	Results   []*store.Candidate `json:"results"`
	TotalPage int                `json:"total_page"`
	TotalFile int64              `json:"total_file"`
}

// CandidateUpdate carries the editable candidate fields. Nil fields are left unchanged.
type CandidateUpdate struct {
	CandidateName *string `json:"candidate_name"`
	Email         *string `json:"email"`
	PhoneNumber   *string `json:"phone_number"`
	Department    *string `json:"department"`
	Comment       *string `json:"comment"`
	HasResume     *bool   `json:"has_resume"`
}

// BulkResult summarizes a bulk import.
type BulkResult struct {
	Message           string       `json:"message"`
	Success           bool         `json:"success"`
	InsertedCount     int          `json:"inserted_count"`
	NotificationStats notify.Stats `json:"notification_stats"`
}

var bulkRequiredFields = []string{"candidate_name", "email", "phone_number", "department"}

// UploadCVs processes every file as a new candidate. It stops at the first failure.
func (s *Service) UploadCVs(ctx context.Context, uploads []Upload) ([]*store.Candidate, error) {
	if len(uploads) == 0 {
		return nil, invalid("no files uploaded, expected file_upload")
	}

	out := make([]*store.Candidate, 0, len(uploads))
	for _, u := range uploads {
		c, err := s.UploadCV(ctx, u, "")
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UploadCV stores and analyses a résumé. With an empty existingID a new candidate is created;
// otherwise the existing candidate gets the new analysis while keeping its contact details.
func (s *Service) UploadCV(ctx context.Context, u Upload, existingID string) (*store.Candidate, error) {
	mime, err := document.MIMEFromFilename(u.FileName)
	if err != nil {
		return nil, err
	}
	if len(u.Data) == 0 {
		return nil, invalid("file %s is empty", u.FileName)
	}

	sum := sha256.Sum256(u.Data)
	hash := hex.EncodeToString(sum[:])

	var existing *store.Candidate
	if existingID != "" {
		id, err := store.ParseID(existingID)
		if err != nil {
			return nil, err
		}
		if existing, err = s.store.GetCandidate(ctx, id); err != nil {
			return nil, err
		}
	} else {
		dup, err := s.store.FindCandidateByFileHash(ctx, hash)
		switch {
		case err == nil && dup != nil:
			return nil, &DuplicateResumeError{FileName: u.FileName}
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	log := s.logger.With(zap.String("file", u.FileName))

	text, err := document.ExtractText(mime, u.Data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", u.FileName, err)
	}

	log.Info("start analyse candidate", zap.Int("text_length", len(text)))

	profile, err := s.analyzer.AnalyzeCandidate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyse cv %s: %w", u.FileName, err)
	}

	key, err := s.files.Save(ctx, u.FileName, u.Data)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", u.FileName, err)
	}

	if existing != nil {
		updated := *existing
		preserved := existing.CandidateProfile

		updated.CandidateProfile = *profile
		updated.CandidateName = preserved.CandidateName
		updated.Email = preserved.Email
		updated.PhoneNumber = preserved.PhoneNumber
		updated.CVName = u.FileName
		updated.FileKey = key
		updated.FileHash = hash
		updated.HasResume = true

		if err := s.store.UpdateCandidate(ctx, &updated); err != nil {
			return nil, fmt.Errorf("update candidate: %w", err)
		}

		log.Info("updated candidate with resume", logger.MatchingFields(updated.ID.Hex(), "")...)
		return &updated, nil
	}

	c := &store.Candidate{
		CandidateProfile: *profile,
		HasResume:        true,
		CVName:           u.FileName,
		FileKey:          key,
		FileHash:         hash,
		PhoneKey:         s.phoneKey(profile.PhoneNumber),
		CreatedAt:        s.now(),
	}
	if err := s.store.InsertCandidate(ctx, c); err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}

	log.Info("new candidate", logger.MatchingFields(c.ID.Hex(), "")...)
	return c, nil
}

func (s *Service) GetCandidate(ctx context.Context, id string) (*store.Candidate, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.GetCandidate(ctx, oid)
}

func (s *Service) ListCandidates(ctx context.Context, page, size int) (*CandidatePage, error) {
	p, err := normalizePage(page, size)
	if err != nil {
		return nil, err
	}

	results, total, err := s.store.ListCandidates(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return &CandidatePage{Results: results, TotalPage: totalPages(total, p.Size), TotalFile: total}, nil
}

func (s *Service) UpdateCandidate(ctx context.Context, id string, upd CandidateUpdate) (*store.Candidate, error) {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.CandidateName != nil {
		c.CandidateName = *upd.CandidateName
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.PhoneNumber != nil {
		c.PhoneNumber = *upd.PhoneNumber
		c.PhoneKey = s.phoneKey(c.PhoneNumber)
	}
	if upd.Department != nil {
		c.Department = *upd.Department
	}
	if upd.Comment != nil {
		c.Comment = *upd.Comment
	}
	if upd.HasResume != nil {
		c.HasResume = *upd.HasResume
	}

	if err := s.store.UpdateCandidate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCandidate(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.store.DeleteCandidate(ctx, oid)
}

// BulkUpload imports spreadsheet rows and asks candidates without a résumé to send one.
func (s *Service) BulkUpload(ctx context.Context, rows []map[string]any) (*BulkResult, error) {
	if len(rows) == 0 {
		return nil, invalid("No valid candidates provided")
	}

	for i, row := range rows {
		var missing []string
		for _, field := range bulkRequiredFields {
			if _, ok := row[field]; !ok {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return nil, invalid("Candidate at row %d is missing required fields: %s", i+1, strings.Join(missing, ", "))
		}
	}

	createdAt := s.now()
	candidates := make([]*store.Candidate, 0, len(rows))
	for _, row := range rows {
		hasResume := false
		if v, ok := row["has_resume"]; ok {
			switch strings.ToLower(cellString(v)) {
			case "true", "yes", "1":
				hasResume = true
			}
		}

		cvName := ""
		if hasResume {
			cvName = "pending"
		}

		phone := cellString(row["phone_number"])
		candidates = append(candidates, &store.Candidate{
			CandidateProfile: ai.CandidateProfile{
				CandidateName:  cellString(row["candidate_name"]),
				Email:          cellString(row["email"]),
				PhoneNumber:    phone,
				Comment:        cellString(row["comment"]),
				Degree:         []string{},
				Experience:     []string{},
				TechnicalSkill: []string{},
				Responsibility: []string{},
				Certificate:    []string{},
				SoftSkill:      []string{},
				JobRecommended: []string{},
			},
			Department: cellString(row["department"]),
			HasResume:  hasResume,
			CVName:     cvName,
			PhoneKey:   s.phoneKey(phone),
			CreatedAt:  createdAt,
		})
	}

	if err := s.store.InsertCandidates(ctx, candidates); err != nil {
		return nil, fmt.Errorf("insert candidates: %w", err)
	}

	var stats notify.Stats
	for _, c := range candidates {
		if c.HasResume {
			continue
		}
		_, err := s.sender.Send(ctx, c.PhoneNumber, notify.ResumeRequest(c.CandidateName))
		if err != nil {
			s.logger.Error("failed to send whatsapp notification", zap.String("candidate", c.CandidateName), zap.Error(err))
		}
		stats.Record(err)
	}

	s.logger.Info("whatsapp resume request notifications",
		zap.Int("sent", stats.Sent), zap.Int("failed", stats.Failed), zap.Int("total", stats.Total))

	return &BulkResult{
		Message:           fmt.Sprintf("Successfully uploaded %d candidates", len(candidates)),
		Success:           true,
		InsertedCount:     len(candidates),
		NotificationStats: stats,
	}, nil
}

// cellString renders a spreadsheet value. Whole numbers lose their decimal part so phone
// numbers survive a trip through JSON.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
