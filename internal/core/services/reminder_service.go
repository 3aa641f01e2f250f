package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// ============================================================
// Daily operator reminder
// ============================================================

// ReminderService writes one notification per operator summarising the
// pending reservations assigned to them for the day. It only inserts
// notification rows and never touches reservation state.
type ReminderService struct {
	repos *repositories.Repos
	spec  string
	cron  *cron.Cron
	now   Clock
}

// NewReminderService creates a reminder job on the given cron spec.
// An empty spec disables the job.
func NewReminderService(repos *repositories.Repos, spec string) *ReminderService {
	return &ReminderService{
		repos: repos,
		spec:  spec,
		cron:  cron.New(),
		now:   time.Now,
	}
}

// Start schedules the job
func (s *ReminderService) Start() error {
	if s.spec == "" {
		log.Println("⚠️ ReminderService disabled (REMINDER_CRON is empty)")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sent, err := s.SendDailyReminders(ctx)
		if err != nil {
			log.Printf("❌ Reminder job failed: %v", err)
			return
		}
		if sent > 0 {
			log.Printf("📅 Sent %d operator reminders", sent)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("🚀 ReminderService started (%s)", s.spec)
	return nil
}

// Stop waits for a running job to finish
func (s *ReminderService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 ReminderService stopped")
}

// SendDailyReminders notifies each active operator that has pending work
// today and returns how many notifications were written
func (s *ReminderService) SendDailyReminders(ctx context.Context) (int, error) {
	day := today(s.now())

	operators, err := s.repos.Users.ListActiveByRole(ctx, domain.RoleOperator)
	if err != nil {
		return 0, fmt.Errorf("list operators: %w", err)
	}

	notes := make([]*models.Notification, 0, len(operators))
	for _, op := range operators {
		opID := op.ID
		rows, err := s.repos.Reservations.Find(ctx, repositories.ReservationFilter{
			OperatorID: &opID,
			Statuses:   []domain.ReservationStatus{domain.StatusPending},
			From:       &day,
			To:         &day,
		})
		if err != nil {
			return 0, fmt.Errorf("list assignments for operator %d: %w", op.ID, err)
		}
		if len(rows) == 0 {
			continue
		}
		notes = append(notes, newNotification(op.ID, reminderMessage(day, rows)))
	}

	if err := s.repos.Notifications.CreateBatch(ctx, notes); err != nil {
		return 0, fmt.Errorf("store reminders: %w", err)
	}
	return len(notes), nil
}

func reminderMessage(day time.Time, rows []*models.Reservation) string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = fmt.Sprintf("#%d", r.ID)
	}
	return fmt.Sprintf("Tienes %d entrega(s) pendiente(s) para el %s: %s",
		len(rows), day.Format(domain.DateLayout), strings.Join(ids, ", "))
}
