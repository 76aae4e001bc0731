package service

import (
	"context"
	"fmt"
	"strings"

	"baymax-vitals/internal/notify"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// CaretakerRequest 通知照护人请求
type CaretakerRequest struct {
	Message   string                `json:"message"`
	SessionID string                `json:"sessionId,omitempty"`
	Atypical  []notify.AtypicalStat `json:"atypical,omitempty"`
}

// CaretakerService forwards a user's message to their caretaker.
type CaretakerService interface {
	Notify(ctx context.Context, userID string, req CaretakerRequest) error
}

type caretakerService struct {
	profiles repository.ProfilesRepository
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewCaretakerService(profiles repository.ProfilesRepository, notifier notify.Notifier, logger *zap.Logger) CaretakerService {
	return &caretakerService{profiles: profiles, notifier: notifier, logger: logger}
}

func (s *caretakerService) Notify(ctx context.Context, userID string, req CaretakerRequest) error {
	if userID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && len(req.Atypical) == 0 {
		return fmt.Errorf("%w: message or atypical stats required", ErrInvalidInput)
	}

	p, err := profileOrEmpty(ctx, s.profiles, userID)
	if err != nil {
		return err
	}

	msg := &notify.CaretakerMessage{
		UserID:         userID,
		UserName:       p.Name,
		CaretakerName:  p.CaretakerName,
		CaretakerPhone: p.CaretakerPhone,
		Message:        req.Message,
		SessionID:      req.SessionID,
		Atypical:       req.Atypical,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return err
	}
	s.logger.Info("Caretaker notified",
		zap.String("user_id", userID),
		zap.String("session_id", req.SessionID),
	)
	return nil
}
