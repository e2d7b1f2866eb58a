package recruiting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/document"
	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/store"
)

// InboundMedia is an attachment of an inbound WhatsApp message.
type InboundMedia struct {
	URL         string
	ContentType string
}

// InboundMessage is a WhatsApp message received through the webhook.
type InboundMessage struct {
	From  string
	Body  string
	Media []InboundMedia
}

// HandleInbound reacts to a candidate's message and returns the reply text.
// Attached PDF or DOCX files are processed as the candidate's new résumé.
func (s *Service) HandleInbound(ctx context.Context, msg InboundMessage) string {
	from := strings.TrimPrefix(strings.TrimSpace(msg.From), "whatsapp:")
	log := s.logger.With(zap.String("from", from), zap.Int("media", len(msg.Media)))
	log.Info("received whatsapp message")

	candidate, err := s.store.FindCandidateByPhone(ctx, s.phoneKey(from))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("no candidate found for phone number")
			return notify.ReplyUnknownSender
		}
		log.Error("error processing webhook", zap.Error(err))
		return notify.ReplyInternalError
	}

	if len(msg.Media) == 0 {
		return notify.ReplyAskForResume(candidate.CandidateName)
	}

	type download struct {
		name string
		data []byte
	}

	files := make([]download, 0, len(msg.Media))
	for _, media := range msg.Media {
		ext, err := document.ExtensionForMIME(media.ContentType)
		if err != nil {
			return notify.ReplyUnsupportedFile
		}

		if s.media == nil {
			log.Error("media download is not configured")
			return notify.ReplyDownloadFailed
		}

		data, err := s.media.Fetch(ctx, media.URL)
		if err != nil {
			log.Error("failed to download media", zap.Error(err))
			return notify.ReplyDownloadFailed
		}

		files = append(files, download{name: fmt.Sprintf("resume_%s%s", candidate.ID.Hex(), ext), data: data})
	}

	for _, f := range files {
		if err := s.store.SetHasResume(ctx, candidate.ID, true); err != nil {
			log.Error("failed to flag resume", zap.Error(err))
			return notify.ReplyAnalysisFailed
		}

		if _, err := s.UploadCV(ctx, Upload{FileName: f.name, Data: f.data}, candidate.ID.Hex()); err != nil {
			log.Error("error processing resume", zap.Error(err))
			return notify.ReplyAnalysisFailed
		}
	}

	return notify.ReplyResumeReceived(candidate.CandidateName)
}
