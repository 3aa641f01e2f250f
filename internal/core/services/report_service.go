package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
)

// ReportColumns is the fixed column order of the reservation export
var ReportColumns = []string{
	"id", "user_id", "user_email", "machine_id", "machine_model",
	"reservation_date", "start_time", "end_time", "status", "total_payment",
}

// ReportService projects reservations into a flat table
type ReportService struct {
	reservationRepo repositories.ReservationRepository
}

// NewReportService creates a new report service
func NewReportService(reservationRepo repositories.ReservationRepository) *ReportService {
	return &ReportService{reservationRepo: reservationRepo}
}

// ReportQuery holds raw export filters. Malformed values are ignored.
type ReportQuery struct {
	StartDate string
	EndDate   string
	Status    string
	UserID    string
}

// filterFor turns q into a repository filter. Non-admins only ever see
// the reservations they requested.
func filterFor(actor domain.Actor, q ReportQuery) repositories.ReservationFilter {
	var f repositories.ReservationFilter

	if t, err := domain.ParseDate(q.StartDate); err == nil {
		f.From = &t
	}
	if t, err := domain.ParseDate(q.EndDate); err == nil {
		f.To = &t
	}
	if s := domain.ReservationStatus(q.Status); s.Valid() {
		f.Statuses = []domain.ReservationStatus{s}
	}

	if actor.Role.IsAdmin() {
		if id, err := strconv.ParseUint(q.UserID, 10, 32); err == nil {
			uid := uint(id)
			f.UserID = &uid
		}
	} else {
		uid := actor.UserID
		f.UserID = &uid
	}
	return f
}

// WriteReservationsCSV streams the export to w
func (s *ReportService) WriteReservationsCSV(ctx context.Context, actor domain.Actor, q ReportQuery, w io.Writer) error {
	rows, err := s.reservationRepo.Find(ctx, filterFor(actor, q))
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ReportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(reportRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportFilename names the export after the current day
func ReportFilename(now time.Time) string {
	return fmt.Sprintf("reservas_%s.csv", now.Format("20060102"))
}

func reportRecord(r *models.Reservation) []string {
	resp := r.ToResponse()
	return []string{
		strconv.FormatUint(uint64(resp.ID), 10),
		strconv.FormatUint(uint64(resp.UserID), 10),
		resp.UserEmail,
		strconv.FormatUint(uint64(resp.MachineID), 10),
		resp.MachineModel,
		resp.ReservationDate,
		resp.StartTime,
		resp.EndTime,
		string(resp.Status),
		resp.TotalPayment,
	}
}
