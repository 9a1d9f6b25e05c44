package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/metrics"
	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/pkg/utils"
)

// notifyTimeout 单次通知邮件的最长耗时
const notifyTimeout = 30 * time.Second

// SubmissionNotifier 新提交的通知渠道，由 pkg/email.Notifier 实现
type SubmissionNotifier interface {
	IsConfigured() bool
	SendSubmissionNotification(ctx context.Context, s models.Submission) error
}

// SubmissionInput 用户提交的候选资源
type SubmissionInput struct {
	Name                string
	Type                string
	Address             string
	Latitude            string
	Longitude           string
	Hours               *string
	PhotoURL            *string
	Phone               *string
	AppointmentRequired bool
}

// SubmissionService 接收用户提交并通知管理员
type SubmissionService interface {
	// Submit 持久化提交后立即返回，通知在后台发送，失败只记录日志
	Submit(ctx context.Context, in SubmissionInput) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
}

type submissionService struct {
	store    repositories.ResourceStore
	notifier SubmissionNotifier
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewSubmissionService notifier 可为 nil
func NewSubmissionService(store repositories.ResourceStore, notifier SubmissionNotifier) SubmissionService {
	return &submissionService{store: store, notifier: notifier, now: time.Now}
}

func (s *submissionService) Submit(ctx context.Context, in SubmissionInput) (*models.Submission, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	v := validationErrors{}
	v.required("name", in.Name)
	v.required("type", in.Type)
	v.required("address", in.Address)
	v.required("latitude", in.Latitude)
	v.required("longitude", in.Longitude)
	if err := v.err(); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(in.Name),
		Type:                CanonicalCategory(in.Type),
		Address:             strings.TrimSpace(in.Address),
		Latitude:            strings.TrimSpace(in.Latitude),
		Longitude:           strings.TrimSpace(in.Longitude),
		Hours:               utils.OptionalString(in.Hours),
		PhotoURL:            utils.OptionalString(in.PhotoURL),
		Phone:               utils.OptionalString(in.Phone),
		AppointmentRequired: in.AppointmentRequired,
		SubmittedAt:         s.now(),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", translateStoreError(err))
	}
	metrics.SubmissionsTotal.Inc()

	s.notifyAsync(*sub)
	return sub, nil
}

func (s *submissionService) List(ctx context.Context) ([]models.Submission, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListSubmissions(ctx)
}

// notifyAsync 后台发送通知，使用独立上下文，不受请求取消影响
func (s *submissionService) notifyAsync(sub models.Submission) {
	if s.notifier == nil || !s.notifier.IsConfigured() {
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		logger.L().Info("notify_skipped", "submission_id", sub.ID, "reason", "email not configured")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				logger.L().Error("notify_panic", "submission_id", sub.ID, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendSubmissionNotification(ctx, sub); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			logger.L().Warn("notify_failed", "submission_id", sub.ID, "err", err)
			return
		}
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		logger.L().Info("notify_sent", "submission_id", sub.ID)
	}()
}

// WaitForNotifications 等待后台通知结束，服务关闭与测试时使用
func WaitForNotifications(svc SubmissionService) {
	if s, ok := svc.(*submissionService); ok {
		s.wg.Wait()
	}
}
