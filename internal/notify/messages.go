package notify

import (
	"fmt"

	"github.com/spigell/cv-matcher/internal/utils"
)

const shortlistDescriptionLimit = 200

// NewJobAlert announces a job. Candidates without a résumé get an extra note on how to send one.
func NewJobAlert(jobName, description string, hasResume bool) string {
	msg := fmt.Sprintf("🔔 *New Job Alert!*\n\n*Position:* %s\n\n*Description:* %s\n\n"+
		"Drop your updated resume to apply for this job or else your old resume will be considered for this job.",
		jobName, StripHTML(description))

	if !hasResume {
		msg += "\n\n*Note:* We noticed you haven't uploaded your resume yet. Simply reply to this message " +
			"with your resume attached as a PDF or DOCX file to complete your profile and be considered for this position."
	}

	return msg
}

// Shortlisted congratulates a candidate. The description is cut to 200 characters.
func Shortlisted(candidateName, jobName, description string) string {
	return fmt.Sprintf("🎉 *Congratulations %s!* 🎉\n\n"+
		"You have been shortlisted for the *%s* position.\n\n"+
		"*Position:* %s\n"+
		"*Description:* %s...\n\n"+
		"Our team will contact you soon for the next steps in the selection process.\n\n"+
		"Best regards,\nThe Hiring Team",
		candidateName, jobName, jobName, utils.TruncateRunes(StripHTML(description), shortlistDescriptionLimit))
}

// ResumeRequest asks a bulk-imported candidate to send a résumé.
func ResumeRequest(candidateName string) string {
	return fmt.Sprintf("Hello %s,\n\nThank you for your interest in our opportunities! "+
		"We've created your profile, but we noticed you haven't submitted your resume yet.\n\n"+
		"Please upload your resume to complete your profile and enable us to match you with the best job opportunities.\n\n"+
		"Best regards,\nThe Hiring Team", candidateName)
}

// Webhook replies.
const (
	ReplyUnknownSender   = "Sorry, we couldn't find your profile in our system. Please contact support."
	ReplyUnsupportedFile = "Sorry, we only accept PDF or DOCX files as resumes. Please send your resume in one of these formats."
	ReplyDownloadFailed  = "Sorry, we had trouble downloading your resume. Please try again later."
	ReplyAnalysisFailed  = "Sorry, we had trouble analyzing your resume. Please try again later or contact support."
	ReplyInternalError   = "Sorry, something went wrong. Please try again later."
)

func ReplyResumeReceived(candidateName string) string {
	return fmt.Sprintf("Thank you, %s! Your resume has been received and processed successfully. "+
		"We'll match you with suitable job opportunities soon.", candidateName)
}

func ReplyAskForResume(candidateName string) string {
	return fmt.Sprintf("Hello %s! To complete your profile, please send us your resume as a PDF or DOCX file.", candidateName)
}
