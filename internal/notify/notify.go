// internal/notify/notify.go
//
// Teacher e-mail for finished quizzes, sent through Amazon SES (v2 API).
//
// Characteristics:
//   - Only quiz and logic sessions that carry a teacher address are mailed.
//   - The address must sit in one of TEACHER_EMAIL_DOMAINS; an empty list
//     allows nothing, so the service never mails arbitrary recipients.
//   - With no SES_FROM_EMAIL the notifier is disabled: it logs and skips.
//   - As a game.Listener it sends in the background so the player's request
//     never waits on SES.

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog/log"

	"github.com/jgalan247/Edexcel-GCSE/internal/game"
	"github.com/jgalan247/Edexcel-GCSE/internal/grading"
)

// Sender is the slice of the SES client the notifier uses.
type Sender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ErrDomainNotAllowed rejects teacher addresses outside the configured domains.
var ErrDomainNotAllowed = errors.New("teacher e-mail domain not allowed")

// CheckAddress parses addr and requires its domain to be one of domains.
// Matching ignores case and a leading "@"; subdomains must be listed.
func CheckAddress(addr string, domains []string) (*mail.Address, error) {
	to, err := mail.ParseAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("teacher address %q: %w", addr, err)
	}
	domain := to.Address[strings.LastIndex(to.Address, "@")+1:]
	for _, d := range domains {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(d), "@"), domain) {
			return to, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, domain)
}

// Notifier mails quiz results to teachers.
type Notifier struct {
	client   Sender
	from     string
	fromName string
	domains  []string
	timeout  time.Duration
}

// New loads the default AWS config for region. An empty from address
// returns a disabled notifier.
func New(ctx context.Context, region, from, fromName string, domains []string) (*Notifier, error) {
	if from == "" {
		log.Info().Msg("teacher e-mail disabled: SES_FROM_EMAIL not configured")
		return &Notifier{}, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if len(domains) == 0 {
		log.Warn().Msg("TEACHER_EMAIL_DOMAINS is empty: no teacher address will be mailed")
	}
	log.Info().Str("from", from).Str("region", region).Strs("domains", domains).Msg("teacher e-mail enabled")
	return NewWithSender(sesv2.NewFromConfig(cfg), from, fromName, domains...), nil
}

// NewWithSender wires an explicit client that mails only the given domains.
func NewWithSender(s Sender, from, fromName string, domains ...string) *Notifier {
	return &Notifier{client: s, from: from, fromName: fromName, domains: domains, timeout: 10 * time.Second}
}

// Enabled reports whether mail is actually sent.
func (n *Notifier) Enabled() bool { return n.client != nil }

// SessionFinished implements game.Listener.
func (n *Notifier) SessionFinished(e game.Event) {
	if !wants(e) {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.Notify(ctx, e); err != nil {
			log.Error().Err(err).Str("session", e.SessionID).Msg("teacher e-mail failed")
		}
	}()
}

func wants(e game.Event) bool {
	return e.Mode.IsQuiz() && strings.TrimSpace(e.TeacherEmail) != ""
}

// Notify sends the result e-mail for e synchronously.
func (n *Notifier) Notify(ctx context.Context, e game.Event) error {
	if !wants(e) {
		return nil
	}
	if !n.Enabled() {
		log.Info().Str("to", e.TeacherEmail).Str("session", e.SessionID).Msg("skipping teacher e-mail (disabled)")
		return nil
	}
	to, err := CheckAddress(e.TeacherEmail, n.domains)
	if err != nil {
		log.Warn().Err(err).Str("session", e.SessionID).Msg("refusing teacher e-mail")
		return err
	}

	subject, text, html, err := Compose(e)
	if err != nil {
		return err
	}
	from := n.from
	if n.fromName != "" {
		from = (&mail.Address{Name: n.fromName, Address: n.from}).String()
	}
	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to.Address}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", to.Address, err)
	}
	log.Info().Str("to", to.Address).Str("message_id", aws.ToString(out.MessageId)).Msg("teacher e-mail sent")
	return nil
}

type row struct {
	N           int
	Prompt      string
	Answer      string
	Correct     string
	Mark        grading.Mark
	Explanation string
}

type page struct {
	Player, Title, Grade, Message string
	Score, Total, Percent         int
	Elapsed                       string
	Rows                          []row
}

var htmlTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
<h2>{{.Player}}: {{.Title}}</h2>
<p><strong>{{.Score}}/{{.Total}} ({{.Percent}}%) {{.Grade}}</strong><br>{{.Message}}<br>Time: {{.Elapsed}}</p>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><th>#</th><th>Question</th><th>Answer</th><th>Correct answer</th><th>Result</th></tr>
{{range .Rows}}<tr><td>{{.N}}</td><td>{{.Prompt}}</td><td>{{.Answer}}</td><td>{{.Correct}}</td><td>{{.Mark}}</td></tr>
{{end}}</table>
</body></html>`))

// Compose builds the subject and the text and HTML bodies for e.
func Compose(e game.Event) (subject, text, html string, err error) {
	player := strings.TrimSpace(e.Player)
	if player == "" {
		player = "Anonymous Student"
	}
	grade, msg := grading.Band(e.Percent)
	p := page{
		Player: player, Title: e.Title, Grade: grade, Message: msg,
		Score: e.Score, Total: e.Total, Percent: e.Percent,
		Elapsed: e.Elapsed.Round(time.Second).String(),
	}
	for i, q := range e.Questions {
		r := row{N: i + 1, Prompt: q.Prompt, Answer: "Not answered", Explanation: q.Explanation}
		if q.Answer >= 0 && q.Answer < len(q.Options) {
			r.Answer = q.Options[q.Answer]
		}
		if q.Correct != nil && *q.Correct < len(q.Options) {
			r.Correct = q.Options[*q.Correct]
		}
		if q.Result != nil {
			r.Mark = q.Result.Mark
		}
		p.Rows = append(p.Rows, r)
	}

	subject = fmt.Sprintf("%s: %s %d/%d (%d%%)", player, e.Title, e.Score, e.Total, e.Percent)

	var tb strings.Builder
	fmt.Fprintf(&tb, "%s\n%s\nScore: %d/%d (%d%%) %s\nTime: %s\n\n", player, e.Title, e.Score, e.Total, e.Percent, grade, p.Elapsed)
	for _, r := range p.Rows {
		fmt.Fprintf(&tb, "%d. %s\n   Answer: %s | Correct: %s | %s\n", r.N, r.Prompt, r.Answer, r.Correct, r.Mark)
	}

	var hb bytes.Buffer
	if err := htmlTmpl.Execute(&hb, p); err != nil {
		return "", "", "", err
	}
	return subject, tb.String(), hb.String(), nil
}
