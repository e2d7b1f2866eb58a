package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/recruiting"
)

type pageRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	JobID    string `json:"job_id"`
}

type bulkUploadRequest struct {
	Candidates []map[string]any `json:"candidates"`
}

type matchingRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
	JobID       string `json:"job_id" binding:"required"`
}

type enqueueRequest struct {
	JobID        string   `json:"job_id" binding:"required"`
	CandidateIDs []string `json:"candidate_ids"`
}

// bindOptional decodes a JSON body when one is present.
func bindOptional(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) uploadCV(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}

	uploads := make([]recruiting.Upload, 0, len(form.File["file_upload"]))
	for _, fh := range form.File["file_upload"] {
		f, err := fh.Open()
		if err != nil {
			fail(c, fmt.Errorf("open upload %s: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			fail(c, fmt.Errorf("read upload %s: %w", fh.Filename, err))
			return
		}
		uploads = append(uploads, recruiting.Upload{FileName: fh.Filename, Data: data})
	}

	candidates, err := s.svc.UploadCVs(c.Request.Context(), uploads)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File upload successful!", "candidates": candidates})
}

func (s *Server) listCandidates(c *gin.Context) {
	var req pageRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	page, err := s.svc.ListCandidates(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getCandidate(c *gin.Context) {
	candidate, err := s.svc.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (s *Server) updateCandidate(c *gin.Context) {
	var upd recruiting.CandidateUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := s.svc.UpdateCandidate(c.Request.Context(), c.Param("id"), upd); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document updated successfully"})
}

func (s *Server) deleteCandidate(c *gin.Context) {
	if err := s.svc.DeleteCandidate(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

func (s *Server) bulkUpload(c *gin.Context) {
	var req bulkUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.BulkUpload(c.Request.Context(), req.Candidates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) createJob(c *gin.Context) {
	var in recruiting.JobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.CreateJob(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.svc.ListJobs(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.svc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteJob(c *gin.Context) {
	if err := s.svc.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

func (s *Server) processMatching(c *gin.Context) {
	var req matchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := s.svc.ProcessMatching(c.Request.Context(), req.CandidateID, req.JobID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) enqueueMatching(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	n, err := s.svc.Enqueue(c.Request.Context(), req.JobID, req.CandidateIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Queued %d matching tasks", n), "queued": n})
}

func (s *Server) allMatchings(c *gin.Context) {
	matchings, err := s.svc.AllMatchings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, matchings)
}

func (s *Server) listMatchings(c *gin.Context) {
	var req pageRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	page, err := s.svc.ListMatchings(c.Request.Context(), req.Page, req.PageSize, req.JobID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getMatching(c *gin.Context) {
	m, err := s.svc.GetMatching(c.Request.Context(), c.Param("id"), c.Param("job_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) shortlistNotify(c *gin.Context) {
	var req recruiting.ShortlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.ShortlistNotify(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Twilio attaches at most ten media items to a message.
const maxInboundMedia = 10

// twilioWebhook answers inbound WhatsApp messages with TwiML. Twilio always gets a 200 so
// the sender sees the reply text even when processing failed.
func (s *Server) twilioWebhook(c *gin.Context) {
	msg := recruiting.InboundMessage{
		From: c.PostForm("From"),
		Body: c.PostForm("Body"),
	}

	n, _ := strconv.Atoi(c.PostForm("NumMedia"))
	n = min(max(n, 0), maxInboundMedia)
	for i := 0; i < n; i++ {
		u := c.PostForm(fmt.Sprintf("MediaUrl%d", i))
		if u == "" {
			continue
		}
		msg.Media = append(msg.Media, recruiting.InboundMedia{
			URL:         u,
			ContentType: c.PostForm(fmt.Sprintf("MediaContentType%d", i)),
		})
	}

	reply := s.svc.HandleInbound(c.Request.Context(), msg)

	doc, err := notify.Reply(reply)
	if err != nil {
		s.logger.Error("failed to render twiml", zap.Error(err))
		c.String(http.StatusInternalServerError, "")
		return
	}
	c.Data(http.StatusOK, notify.TwiMLContentType, []byte(doc))
}
