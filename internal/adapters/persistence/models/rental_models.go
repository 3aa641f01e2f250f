package models

import (
	"fmt"
	"time"

	"washtech-rental/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Table names, used by the Active scope to qualify is_active in joins
const (
	TableUsers         = "users"
	TableMachines      = "washing_machines"
	TableInventory     = "inventory"
	TableReservations  = "reservations"
	TablePayments      = "payments"
	TableNotifications = "notifications"
)

// DefaultMachineImage is used when a machine is registered without an image
const DefaultMachineImage = "/static/images/washing-machine.jpg"

// ============================================================
// Asset Registry
// ============================================================

// WashingMachine represents washing_machines table
type WashingMachine struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	Model             string               `gorm:"size:100;not null" json:"model"`
	Capacity          string               `gorm:"size:50;not null" json:"capacity"`
	OperationalStatus domain.MachineStatus `gorm:"size:20;not null;default:'operational';index" json:"operational_status"`
	AcquisitionDate   *time.Time           `gorm:"type:date" json:"acquisition_date"`
	Description       string               `gorm:"type:text" json:"description"`
	ImageURL          string               `gorm:"size:255" json:"image_url"`
	Lifecycle
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Inventory *Inventory `gorm:"foreignKey:MachineID" json:"inventory,omitempty"`
}

func (WashingMachine) TableName() string {
	return TableMachines
}

// IsOperational reports whether the machine can currently be booked
func (m *WashingMachine) IsOperational() bool {
	return m.OperationalStatus == domain.MachineOperational
}

// Inventory is the 1:1 availability row owned by a machine
type Inventory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MachineID    uint      `gorm:"column:washing_machine_id;uniqueIndex;not null" json:"machine_id"`
	Availability bool      `gorm:"not null" json:"availability"`
	Location     string    `gorm:"size:100" json:"location"`
	LastUpdated  time.Time `gorm:"autoUpdateTime" json:"last_updated"`
	Lifecycle
}

func (Inventory) TableName() string {
	return TableInventory
}

// ============================================================
// Reservations
// ============================================================

// Reservation represents reservations table.
// SlotKey is non-NULL exactly while the reservation holds its
// (machine, date) slot; the unique index on it closes the booking race.
type Reservation struct {
	ID                 uint                     `gorm:"primaryKey" json:"id"`
	UserID             uint                     `gorm:"not null;index" json:"user_id"`
	MachineID          uint                     `gorm:"column:washing_machine_id;not null;index:idx_reservation_machine_date" json:"machine_id"`
	ReservationDate    datatypes.Date           `gorm:"not null;index:idx_reservation_machine_date" json:"reservation_date"`
	StartTime          datatypes.Time           `gorm:"not null" json:"start_time"`
	EndTime            datatypes.Time           `gorm:"not null" json:"end_time"`
	Status             domain.ReservationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AssignedOperatorID *uint                    `gorm:"index" json:"assigned_operator_id"`
	TotalPayment       decimal.Decimal          `gorm:"type:decimal(12,2);not null" json:"total_payment"`
	SlotKey            *string                  `gorm:"size:40;uniqueIndex" json:"-"`
	Lifecycle
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Machine          *WashingMachine `gorm:"foreignKey:MachineID" json:"machine,omitempty"`
	AssignedOperator *User           `gorm:"foreignKey:AssignedOperatorID" json:"assigned_operator,omitempty"`
	Payments         []Payment       `gorm:"foreignKey:ReservationID" json:"payments,omitempty"`
}

func (Reservation) TableName() string {
	return TableReservations
}

// Date returns the reservation day as a UTC time at midnight
func (r *Reservation) Date() time.Time {
	y, m, d := time.Time(r.ReservationDate).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsAssignedTo reports whether operatorID is the assigned operator
func (r *Reservation) IsAssignedTo(operatorID uint) bool {
	return r.AssignedOperatorID != nil && *r.AssignedOperatorID == operatorID
}

// SlotKey identifies the (machine, date) slot a reservation occupies
func SlotKey(machineID uint, date time.Time) string {
	return fmt.Sprintf("%d:%s", machineID, date.Format(domain.DateLayout))
}

// ClockString renders a time-of-day column as HH:MM:SS
func ClockString(t datatypes.Time) string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ReservationResponse DTO
type ReservationResponse struct {
	ID                 uint                     `json:"id"`
	UserID             uint                     `json:"user_id"`
	UserEmail          string                   `json:"user_email,omitempty"`
	MachineID          uint                     `json:"machine_id"`
	MachineModel       string                   `json:"machine_model,omitempty"`
	ReservationDate    string                   `json:"reservation_date"`
	StartTime          string                   `json:"start_time"`
	EndTime            string                   `json:"end_time"`
	Status             domain.ReservationStatus `json:"status"`
	AssignedOperatorID *uint                    `json:"assigned_operator_id"`
	OperatorName       string                   `json:"operator_name,omitempty"`
	TotalPayment       string                   `json:"total_payment"`
	CreatedAt          time.Time                `json:"created_at"`
}

func (r *Reservation) ToResponse() *ReservationResponse {
	resp := &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		MachineID:          r.MachineID,
		ReservationDate:    r.Date().Format(domain.DateLayout),
		StartTime:          ClockString(r.StartTime),
		EndTime:            ClockString(r.EndTime),
		Status:             r.Status,
		AssignedOperatorID: r.AssignedOperatorID,
		TotalPayment:       r.TotalPayment.StringFixed(2),
		CreatedAt:          r.CreatedAt,
	}
	if r.User != nil {
		resp.UserEmail = r.User.Email
	}
	if r.Machine != nil {
		resp.MachineModel = r.Machine.Model
	}
	if r.AssignedOperator != nil {
		resp.OperatorName = r.AssignedOperator.Name
	}
	return resp
}

// ============================================================
// Payments & Notifications
// ============================================================

// Payment is stub bookkeeping attached to a reservation
type Payment struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	ReservationID uint                 `gorm:"not null;index" json:"reservation_id"`
	Amount        decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method        domain.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Status        domain.PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt        time.Time            `gorm:"autoCreateTime" json:"paid_at"`
	Lifecycle
}

func (Payment) TableName() string {
	return TablePayments
}

// Notification is a persisted message for a user; there is no delivery channel
type Notification struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;index" json:"user_id"`
	Message string    `gorm:"type:text;not null" json:"message"`
	SentAt  time.Time `gorm:"autoCreateTime" json:"sent_at"`
	IsRead  bool      `gorm:"not null" json:"is_read"`
	Lifecycle
}

func (Notification) TableName() string {
	return TableNotifications
}
