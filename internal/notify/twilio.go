package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when WhatsApp credentials are missing.
var ErrNotConfigured = errors.New("twilio credentials not configured")

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// TwilioConfig holds the WhatsApp sender settings.
type TwilioConfig struct {
	AccountSID  string `mapstructure:"account-sid"`
	AuthToken   string `mapstructure:"auth-token"`
	AuthFile    string `mapstructure:"auth-token-file"`
	From        string `mapstructure:"whatsapp-from"`
	CountryCode string `mapstructure:"country-code"`
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// Twilio sends WhatsApp messages through the Twilio REST API.
type Twilio struct {
	api         messageCreator
	from        string
	countryCode string
	logger      *zap.Logger
}

var _ Sender = (*Twilio)(nil)

func NewTwilio(cfg TwilioConfig, logger *zap.Logger) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrNotConfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return newTwilio(client.Api, cfg, logger), nil
}

func newTwilio(api messageCreator, cfg TwilioConfig, logger *zap.Logger) *Twilio {
	if logger == nil {
		logger = zap.NewNop()
	}
	code := cfg.CountryCode
	if code == "" {
		code = DefaultCountryCode
	}

	return &Twilio{
		api:         api,
		from:        strings.TrimPrefix(cfg.From, "whatsapp:"),
		countryCode: code,
		logger:      logger,
	}
}

func (t *Twilio) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	number := FormatPhoneNumberWithCode(to, t.countryCode)
	if number == "" {
		return "", fmt.Errorf("invalid phone number %q", to)
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + t.from)
	params.SetTo("whatsapp:" + number)
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}

	t.logger.Info("whatsapp message sent", zap.String("sid", sid))

	return sid, nil
}

// Disabled is a Sender used when no credentials are configured. Every send fails.
type Disabled struct{}

func (Disabled) Send(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// Stats counts notification outcomes.
type Stats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

func (s *Stats) Record(err error) {
	if err != nil {
		s.Failed++
	} else {
		s.Sent++
	}
	s.Total = s.Sent + s.Failed
}
