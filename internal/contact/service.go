package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/electrohogar/storefront-backend/pkg/config"
	"github.com/electrohogar/storefront-backend/pkg/db/models"
	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
	"github.com/electrohogar/storefront-backend/pkg/logger"
	"github.com/electrohogar/storefront-backend/pkg/resend"
)

// Persister is the slice of the repository the service writes through.
type Persister interface {
	Create(ctx context.Context, message *models.ContactMessage) error
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Mailer sends the notification email. The Resend client satisfies it.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, email resend.Email) (*resend.SendResult, error)
}

// RateLimiter gates submissions per client IP.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams groups dependencies for the contact service.
type ServiceParams struct {
	Repo      Persister
	Mailer    Mailer
	Limiter   RateLimiter
	Validator *validator.Validate
	Config    config.ContactConfig
	Logger    *logger.Logger
}

// Service accepts contact form submissions.
type Service interface {
	Submit(ctx context.Context, clientIP string, req SubmitRequest) (SubmitResult, error)
}

type service struct {
	repo     Persister
	mailer   Mailer
	limiter  RateLimiter
	validate *validator.Validate
	cfg      config.ContactConfig
	logg     *logger.Logger
}

// NewService builds the contact service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact repo is required")
	}
	if params.Validator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validator is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		mailer:   params.Mailer,
		limiter:  params.Limiter,
		validate: params.Validator,
		cfg:      params.Config,
		logg:     params.Logger,
	}, nil
}

// Submit validates, rate limits, persists, and then notifies. A failed email
// never loses the stored message; the result is marked degraded instead.
func (s *service) Submit(ctx context.Context, clientIP string, req SubmitRequest) (SubmitResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return SubmitResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact submission").
			WithDetails(fieldMessages(err))
	}

	if s.limiter != nil && clientIP != "" {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "contact:"+clientIP, int64(s.cfg.RateLimitPerIP), s.cfg.RateLimitWindow)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "contact rate limit check failed, allowing request")
		} else if !allowed {
			return SubmitResult{}, pkgerrors.New(pkgerrors.CodeRateLimit, "too many contact requests, try again later")
		}
	}

	message := &models.ContactMessage{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		message.Phone = &phone
	}
	if subject := strings.TrimSpace(req.Subject); subject != "" {
		message.Subject = &subject
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return SubmitResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store contact message")
	}

	result := SubmitResult{MessageID: message.ID.String()}
	if !s.notify(ctx, message) {
		result.Degraded = true
	}
	return result, nil
}

// notify sends the email and reports whether it went out.
func (s *service) notify(ctx context.Context, message *models.ContactMessage) bool {
	if s.mailer == nil || !s.mailer.Enabled() || s.cfg.NotifyEmail == "" {
		return false
	}

	subject := "Nuevo mensaje de contacto de " + message.Name
	if message.Subject != nil {
		subject = *message.Subject
	}
	body := fmt.Sprintf("Nombre: %s\nEmail: %s\n", message.Name, message.Email)
	if message.Phone != nil {
		body += "Teléfono: " + *message.Phone + "\n"
	}
	body += "\n" + message.Message

	_, err := s.mailer.Send(ctx, resend.Email{
		To:      []string{s.cfg.NotifyEmail},
		Subject: subject,
		Text:    body,
		ReplyTo: message.Email,
	})
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"error":      err.Error(),
			"message_id": message.ID.String(),
		})
		s.logg.Warn(logCtx, "contact notification email failed, message kept")
		return false
	}

	if err := s.repo.MarkNotified(ctx, message.ID, time.Now().UTC()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "mark notified failed")
	}
	return true
}

// fieldMessages flattens validator errors into per-field messages for inline
// display.
func fieldMessages(err error) map[string]string {
	messages := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return messages
	}
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			messages[field] = "este campo es obligatorio"
		case "email":
			messages[field] = "correo electrónico inválido"
		case "min":
			messages[field] = "demasiado corto"
		case "max":
			messages[field] = "demasiado largo"
		default:
			messages[field] = "valor inválido"
		}
	}
	return messages
}
