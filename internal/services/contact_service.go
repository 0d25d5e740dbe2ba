package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/bajrangpainters/backend/pkg/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	adminTemplate        = "contact_admin.html"
	confirmationTemplate = "contact_confirmation.html"
)

// ErrDeliveryFailed means at least one of the contact emails could not be sent.
var ErrDeliveryFailed = errors.New("failed to send contact emails")

// ContactForm is the visitor's enquiry. Message is optional.
type ContactForm struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SiteAddress string `json:"site_address"`
	Message     string `json:"message"`
}

func (f ContactForm) sanitized() ContactForm {
	return ContactForm{
		Name:        validation.SanitizeHeader(f.Name),
		Email:       validation.SanitizeHeader(f.Email),
		Phone:       validation.SanitizeHeader(f.Phone),
		SiteAddress: validation.SanitizeString(f.SiteAddress),
		Message:     validation.SanitizeString(f.Message),
	}
}

// ValidationError lists the offending fields and why.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid contact form: " + strings.Join(names, ", ")
}

// Field length limits, in characters, matching the contact_inquiries columns.
const (
	maxNameLength        = 255
	maxEmailLength       = 255
	maxPhoneLength       = 32
	maxSiteAddressLength = 512
)

// Validate checks the required fields, their formats and their lengths.
func (f ContactForm) Validate() error {
	fields := map[string]string{}
	required := func(name, value string) bool {
		if strings.TrimSpace(value) == "" {
			fields[name] = "required"
			return false
		}
		return true
	}
	required("name", f.Name)
	if required("email", f.Email) && !validation.ValidateEmail(f.Email) {
		fields["email"] = "invalid email address"
	}
	if required("phone", f.Phone) && !validation.ValidatePhone(f.Phone) {
		fields["phone"] = "invalid phone number"
	}
	required("site_address", f.SiteAddress)

	for _, l := range []struct {
		name  string
		value string
		max   int
	}{
		{"name", f.Name, maxNameLength},
		{"email", f.Email, maxEmailLength},
		{"phone", f.Phone, maxPhoneLength},
		{"site_address", f.SiteAddress, maxSiteAddressLength},
	} {
		if utf8.RuneCountInString(l.value) > l.max {
			fields[l.name] = fmt.Sprintf("must be at most %d characters", l.max)
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the transient message shown after a submission.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// SubmissionResult carries the form as it should be shown next: cleared after
// success, untouched after a failure so the visitor can retry.
type SubmissionResult struct {
	Form      ContactForm `json:"form"`
	Notice    Notice      `json:"notice"`
	InquiryID string      `json:"inquiry_id,omitempty"`
}

var (
	successNotice = Notice{
		Kind:    NoticeSuccess,
		Title:   "Message sent",
		Message: "Thank you for reaching out. We will contact you shortly.",
	}
	failureNotice = Notice{
		Kind:    NoticeError,
		Title:   "Something went wrong",
		Message: "We could not send your message. Please try again.",
	}
	invalidNotice = Notice{
		Kind:    NoticeError,
		Title:   "Missing details",
		Message: "Please fill in all required fields.",
	}
)

// InquiryRecorder stores submitted enquiries.
type InquiryRecorder interface {
	Record(ctx context.Context, inquiry *models.ContactInquiry) error
}

type ContactService struct {
	mailer     Mailer
	inquiries  InquiryRecorder
	templates  *template.Template
	adminEmail string
	company    string
	websiteURL string
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewContactService parses the embedded templates. inquiries may be nil.
func NewContactService(cfg *config.Config, mailer Mailer, inquiries InquiryRecorder, log logrus.FieldLogger) (*ContactService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &ContactService{
		mailer:     mailer,
		inquiries:  inquiries,
		templates:  tmpl,
		adminEmail: cfg.ContactAdminEmail,
		company:    cfg.SMTPFromName,
		websiteURL: cfg.FrontendURL,
		log:        log.WithField("component", "contact"),
		now:        time.Now,
	}, nil
}

// Submit validates the form, sends the admin notification and the visitor
// confirmation together and records the enquiry. Both emails must go out
// for the submission to count as delivered.
func (s *ContactService) Submit(ctx context.Context, form ContactForm, ipAddress string) (SubmissionResult, error) {
	if err := form.Validate(); err != nil {
		return SubmissionResult{Form: form, Notice: invalidNotice}, err
	}
	clean := form.sanitized()

	adminMsg, userMsg, err := s.render(clean)
	if err != nil {
		s.log.WithError(err).Error("Failed to render contact emails")
		return SubmissionResult{Form: form, Notice: failureNotice}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	var adminErr, userErr error
	var g errgroup.Group
	g.Go(func() error {
		adminErr = s.mailer.Send(ctx, adminMsg)
		return nil
	})
	g.Go(func() error {
		userErr = s.mailer.Send(ctx, userMsg)
		return nil
	})
	_ = g.Wait()

	inquiry := &models.ContactInquiry{
		Name:            clean.Name,
		Email:           clean.Email,
		Phone:           validation.NormalizePhone(clean.Phone),
		SiteAddress:     clean.SiteAddress,
		Message:         clean.Message,
		AdminMailStatus: mailStatus(adminErr),
		UserMailStatus:  mailStatus(userErr),
		IPAddress:       ipAddress,
	}
	s.record(ctx, inquiry)

	if err := errors.Join(adminErr, userErr); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"admin_mail": inquiry.AdminMailStatus,
			"user_mail":  inquiry.UserMailStatus,
		}).Warn("Contact email delivery failed")
		return SubmissionResult{Form: form, Notice: failureNotice}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.log.WithField("inquiry_id", inquiry.ID.String()).Info("Contact enquiry delivered")
	result := SubmissionResult{Form: ContactForm{}, Notice: successNotice}
	if inquiry.ID != uuid.Nil {
		result.InquiryID = inquiry.ID.String()
	}
	return result, nil
}

func (s *ContactService) record(ctx context.Context, inquiry *models.ContactInquiry) {
	if s.inquiries == nil {
		return
	}
	if err := s.inquiries.Record(ctx, inquiry); err != nil {
		s.log.WithError(err).Warn("Failed to store contact enquiry")
	}
}

func mailStatus(err error) models.MailStatus {
	if err != nil {
		return models.MailStatusFailed
	}
	return models.MailStatusSent
}

func (s *ContactService) render(form ContactForm) (Message, Message, error) {
	data := map[string]interface{}{
		"Name":        form.Name,
		"Email":       form.Email,
		"Phone":       form.Phone,
		"SiteAddress": form.SiteAddress,
		"Message":     form.Message,
		"Company":     s.company,
		"WebsiteURL":  s.websiteURL,
		"ReceivedAt":  s.now().Format("02 Jan 2006 15:04 MST"),
	}

	var admin, user bytes.Buffer
	if err := s.templates.ExecuteTemplate(&admin, adminTemplate, data); err != nil {
		return Message{}, Message{}, err
	}
	if err := s.templates.ExecuteTemplate(&user, confirmationTemplate, data); err != nil {
		return Message{}, Message{}, err
	}

	return Message{
			To:      s.adminEmail,
			Subject: "New enquiry from " + form.Name,
			HTML:    admin.String(),
			ReplyTo: form.Email,
		}, Message{
			To:      form.Email,
			Subject: "Thank you for contacting " + s.company,
			HTML:    user.String(),
		}, nil
}
