package notify

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// TwiMLContentType is the content type of webhook replies.
const TwiMLContentType = "text/xml"

// Reply renders a messaging TwiML document with one message per body.
func Reply(bodies ...string) (string, error) {
	elements := make([]twiml.Element, 0, len(bodies))
	for _, body := range bodies {
		elements = append(elements, &twiml.MessagingMessage{Body: body})
	}

	doc, err := twiml.Messages(elements)
	if err != nil {
		return "", fmt.Errorf("render twiml: %w", err)
	}
	return doc, nil
}
