package services

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"thesis-verification-api/config"
	"thesis-verification-api/models"

	"go.uber.org/zap"
)

// Notifier tells reviewers about workflow events. Implementations must not
// block the caller on delivery.
type Notifier interface {
	SubmissionCreated(ctx context.Context, sub *models.PendingSubmission, recipients []string)
	SubmissionApproved(ctx context.Context, sub *models.PendingSubmission, recipient string)
	SubmissionRejected(ctx context.Context, sub *models.PendingSubmission, recipient string)
}

// MailNotifier sends HTML e-mail through config.SendMail.
type MailNotifier struct {
	log  *zap.SugaredLogger
	send func(to []string, subject, html string) error
}

func NewMailNotifier(log *zap.SugaredLogger) *MailNotifier {
	if log == nil {
		log = config.Logger()
	}
	return &MailNotifier{log: log, send: config.SendMail}
}

func (n *MailNotifier) SubmissionCreated(_ context.Context, sub *models.PendingSubmission, recipients []string) {
	subject := "Thesis awaiting your approval: " + sub.Title
	msg := fmt.Sprintf("A new thesis \"%s\" by %s (%s) was uploaded and needs %d reviewer approvals.\nReview it at %ssubmissions/%s",
		sub.Title, sub.Author, sub.Institution, sub.TotalApprovalsRequired, appBaseURL(), sub.SubmissionID)
	n.deliver(recipients, subject, "Reviewer", msg)
}

func (n *MailNotifier) SubmissionApproved(_ context.Context, sub *models.PendingSubmission, recipient string) {
	subject := "Thesis approved: " + sub.Title
	msg := fmt.Sprintf("All %d reviewers approved \"%s\". The record is being committed to the ledger.",
		sub.TotalApprovalsRequired, sub.Title)
	n.deliver([]string{recipient}, subject, "Reviewer", msg)
}

func (n *MailNotifier) SubmissionRejected(_ context.Context, sub *models.PendingSubmission, recipient string) {
	reason := ""
	if sub.RejectionReason != nil {
		reason = *sub.RejectionReason
	}
	subject := "Thesis rejected: " + sub.Title
	msg := fmt.Sprintf("\"%s\" was rejected by a reviewer.\nReason: %s", sub.Title, reason)
	n.deliver([]string{recipient}, subject, "Reviewer", msg)
}

func (n *MailNotifier) deliver(to []string, subject, recipientName, message string) {
	to = compactStrings(to)
	if len(to) == 0 || !config.MailConfigured() {
		return
	}
	html := buildFormalEmailHTML(subject, recipientName, message)
	go func() {
		if err := n.send(to, subject, html); err != nil {
			n.log.Warnw("notification email send failed", "subject", subject, "to", to, "error", err)
		}
	}()
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func appBaseURL() string {
	raw := strings.TrimSpace(os.Getenv("APP_BASE_URL"))
	if raw == "" {
		return ""
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

func buildFormalEmailHTML(subject, recipientName, message string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Reviewer"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}
