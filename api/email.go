package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/resend/resend-go/v2"
)

type ResendEmailClient struct {
	client *resend.Client
	from   string
}

func NewResendEmailClient(apiKey string, from string, httpClient *http.Client) ResendEmailClient {
	if apiKey == "" {
		panic("NewResendEmailClient: api key is empty")
	}

	return ResendEmailClient{
		client: resend.NewCustomClient(httpClient, apiKey),
		from:   from,
	}
}

func (c ResendEmailClient) Send(ctx context.Context, email entities.Email) error {
	_, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("could not send email %q: %w", email.Subject, err)
	}

	return nil
}
