package services

import (
	"context"
	"fmt"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
)

// DashboardService builds the role-specific landing payloads
type DashboardService struct {
	repos     *repositories.Repos
	operators *OperatorService
	admin     *AdminService
	now       Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos *repositories.Repos, operators *OperatorService, admin *AdminService) *DashboardService {
	return &DashboardService{
		repos:     repos,
		operators: operators,
		admin:     admin,
		now:       time.Now,
	}
}

// Dashboard is the payload of GET /dashboard; exactly one section is set
type Dashboard struct {
	Role     domain.Role          `json:"role"`
	Client   *ClientDashboardData `json:"client,omitempty"`
	Operator *OperatorDashboard   `json:"operator,omitempty"`
	Admin    *AdminDashboardData  `json:"admin,omitempty"`
}

// For dispatches on the actor's role
func (s *DashboardService) For(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	out := &Dashboard{Role: actor.Role}
	var err error

	switch {
	case actor.Role.IsAdmin():
		out.Admin, err = s.GetAdminDashboard(ctx, actor)
	case domain.HasRole(actor.Role, domain.RoleOperator):
		out.Operator, err = s.operators.Dashboard(ctx, actor.UserID)
	default:
		out.Client, err = s.GetClientDashboard(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================
// Client Dashboard
// ============================================================

// ClientDashboardData represents client dashboard data
type ClientDashboardData struct {
	ActiveReservations int64                         `json:"active_reservations"`
	TotalReservations  int64                         `json:"total_reservations"`
	NextReservation    *models.ReservationResponse   `json:"next_reservation"`
	RecentReservations []*models.ReservationResponse `json:"recent_reservations"`
}

// GetClientDashboard returns client dashboard data
func (s *DashboardService) GetClientDashboard(ctx context.Context, userID uint) (*ClientDashboardData, error) {
	data := &ClientDashboardData{}
	mine := repositories.ReservationFilter{UserID: &userID}

	var err error
	if data.TotalReservations, err = s.repos.Reservations.Count(ctx, mine); err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}

	active := mine
	active.Statuses = domain.SlotHoldingStatuses
	if data.ActiveReservations, err = s.repos.Reservations.Count(ctx, active); err != nil {
		return nil, fmt.Errorf("count active reservations: %w", err)
	}

	// Next upcoming: earliest slot-holding reservation from today on
	day := today(s.now())
	upcoming := active
	upcoming.From = &day
	next, _, err := s.repos.Reservations.List(ctx, upcoming, 0, 1)
	if err != nil {
		return nil, fmt.Errorf("next reservation: %w", err)
	}
	if len(next) > 0 {
		data.NextReservation = next[0].ToResponse()
	}

	recentFilter := mine
	recentFilter.Newest = true
	recent, _, err := s.repos.Reservations.List(ctx, recentFilter, 0, 5)
	if err != nil {
		return nil, fmt.Errorf("recent reservations: %w", err)
	}
	data.RecentReservations = toResponses(recent)

	return data, nil
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	MachinesByStatus  map[domain.MachineStatus]int64 `json:"machines_by_status"`
	ReservationsToday int64                          `json:"reservations_today"`
	PendingCount      int64                          `json:"pending_count"`
	ActiveClients     int64                          `json:"active_clients"`
	Pending           *PendingOverview               `json:"pending"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context, actor domain.Actor) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}
	var err error

	if data.MachinesByStatus, err = s.repos.Machines.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count machines: %w", err)
	}

	day := today(s.now())
	if data.ReservationsToday, err = s.repos.Reservations.Count(ctx, repositories.ReservationFilter{From: &day, To: &day}); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}

	pending := repositories.ReservationFilter{Statuses: []domain.ReservationStatus{domain.StatusPending}}
	if data.PendingCount, err = s.repos.Reservations.Count(ctx, pending); err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}

	if data.ActiveClients, err = s.repos.Users.CountActiveByRole(ctx, domain.RoleClient); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	if data.Pending, err = s.admin.PendingOverview(ctx, actor); err != nil {
		return nil, err
	}

	return data, nil
}
