/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags. Custom tags:
    phone     10 or 11 digits once punctuation is stripped
    notblank  not empty after trimming
    date      YYYY-MM-DD, RFC3339 or DD/MM/YYYY
  See validate.go.

AMOUNTS:
  Money and hours travel as JSON numbers. They are converted to decimals
  at the boundary and never summed as floats.

SEE ALSO:
  - handlers.go: Uses these types
  - validate.go: Validator setup
*/
package api

import (
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/generic"
	"github.com/warp/tuition-engine/internship"
)

// =============================================================================
// STUDENTS
// =============================================================================

type StudentDTO struct {
	ID                  string  `json:"id"`
	Phone               string  `json:"phone"`
	Name                string  `json:"name"`
	Email               string  `json:"email,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	EnrollmentDate      string  `json:"enrollment_date"`
	MonthlyFee          float64 `json:"monthly_fee"`
	Status              string  `json:"status"`
	CancellationDate    string  `json:"cancellation_date,omitempty"`
	CancellationFeePaid bool    `json:"cancellation_fee_paid"`
	CPF                 string  `json:"cpf,omitempty"`
	CourseType          string  `json:"course_type"`
	PlanLength          int     `json:"plan_length"`
	DueDay              int     `json:"due_day"`
}

type CreateStudentRequest struct {
	Phone          string  `json:"phone" validate:"required,phone"`
	Name           string  `json:"name" validate:"required,notblank"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Notes          string  `json:"notes"`
	EnrollmentDate string  `json:"enrollment_date" validate:"required,date"`
	MonthlyFee     float64 `json:"monthly_fee" validate:"gte=0"`
	CPF            string  `json:"cpf"`
	CourseType     string  `json:"course_type"`
	PlanLength     int     `json:"plan_length" validate:"omitempty,gte=1,lte=120"`
	DueDay         int     `json:"due_day"`
}

type UpdateStudentRequest struct {
	Name       *string  `json:"name" validate:"omitempty,notblank"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Notes      *string  `json:"notes"`
	MonthlyFee *float64 `json:"monthly_fee" validate:"omitempty,gte=0"`
	CPF        *string  `json:"cpf"`
	CourseType *string  `json:"course_type"`
	PlanLength *int     `json:"plan_length" validate:"omitempty,gte=1,lte=120"`
	DueDay     *int     `json:"due_day"`
}

type CancelStudentRequest struct {
	Date    string `json:"date" validate:"omitempty,date"`
	FeePaid bool   `json:"fee_paid"`
	Reason  string `json:"reason"`
}

type RegenerateScheduleRequest struct {
	EndDate string `json:"end_date" validate:"omitempty,date"`
}

type RegistrationDTO struct {
	Student StudentDTO  `json:"student"`
	Periods []PeriodDTO `json:"periods"`
}

// =============================================================================
// BILLING PERIODS
// =============================================================================

type PeriodDTO struct {
	ID          string  `json:"id"`
	StudentID   string  `json:"student_id"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	DueDate     string  `json:"due_date"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Status      string  `json:"status"`
	Note        string  `json:"note,omitempty"`
}

type CreatePeriodRequest struct {
	StudentID   string   `json:"student_id" validate:"required,phone"`
	Month       int      `json:"month" validate:"required,gte=1,lte=12"`
	Year        int      `json:"year" validate:"required,gte=1900"`
	DueDate     string   `json:"due_date" validate:"omitempty,date"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
	Status      string   `json:"status" validate:"omitempty,oneof=pending paid overdue canceled"`
	PaymentDate string   `json:"payment_date" validate:"omitempty,date"`
	Note        string   `json:"note"`
}

type PaymentRequest struct {
	Date   string   `json:"date" validate:"omitempty,date"`
	Amount *float64 `json:"amount" validate:"omitempty,gte=0"`
	Note   string   `json:"note"`
}

type UpdatePeriodRequest struct {
	Status      *string  `json:"status" validate:"omitempty,oneof=pending paid overdue canceled"`
	PaymentDate *string  `json:"payment_date" validate:"omitempty,date"`
	DueDate     *string  `json:"due_date" validate:"omitempty,date"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
	Note        *string  `json:"note"`
}

type BatchRequest struct {
	Month    int    `json:"month" validate:"required,gte=1,lte=12"`
	Year     int    `json:"year" validate:"required,gte=1900"`
	DueDay   int    `json:"due_day"`
	Status   string `json:"status" validate:"omitempty,oneof=pending paid overdue canceled"`
	Override bool   `json:"override"`
}

type BatchResultDTO struct {
	Month    int `json:"month"`
	Year     int `json:"year"`
	Created  int `json:"created"`
	Replaced int `json:"replaced"`
	Skipped  int `json:"skipped"`
}

// =============================================================================
// REPORTS
// =============================================================================

type ArrearsDTO struct {
	StudentID    string  `json:"student_id"`
	Phone        string  `json:"phone"`
	Name         string  `json:"name"`
	LastDueDate  string  `json:"last_due_date"`
	DaysOverdue  int     `json:"days_overdue"`
	OverdueCount int     `json:"overdue_count"`
	Outstanding  float64 `json:"outstanding"`
	HasSchedule  bool    `json:"has_schedule"`
}

// StudentArrearsDTO answers a single-student arrears check.
type StudentArrearsDTO struct {
	StudentID string      `json:"student_id"`
	Overdue   bool        `json:"overdue"`
	Arrears   *ArrearsDTO `json:"arrears,omitempty"`
}

type RevenueDTO struct {
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	Students  int     `json:"students"`
	Expected  float64 `json:"expected"`
	Collected float64 `json:"collected"`
	Remaining float64 `json:"remaining"`
}

type StatusTotalsDTO struct {
	Count  map[string]int     `json:"count"`
	Amount map[string]float64 `json:"amount"`
	Total  float64            `json:"total"`
}

type MonthTotalsDTO struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Label string `json:"label"`
	StatusTotalsDTO
}

type SummaryDTO struct {
	From   string           `json:"from"`
	To     string           `json:"to"`
	Totals StatusTotalsDTO  `json:"totals"`
	Months []MonthTotalsDTO `json:"months"`
}

type ParticipationDTO struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name,omitempty"`
	Sessions  int     `json:"sessions"`
	Hours     float64 `json:"hours"`
}

// =============================================================================
// INTERNSHIPS
// =============================================================================

type SessionDTO struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	Topic        string   `json:"topic"`
	Hours        float64  `json:"hours"`
	Participants []string `json:"participants"`
	Notes        string   `json:"notes,omitempty"`
}

type SessionRequest struct {
	Date         string   `json:"date" validate:"required,date"`
	Topic        string   `json:"topic" validate:"required,notblank"`
	Hours        float64  `json:"hours" validate:"gt=0"`
	Participants []string `json:"participants" validate:"dive,phone"`
	Notes        string   `json:"notes"`
}

type HoursDTO struct {
	StudentID string   `json:"student_id"`
	Hours     float64  `json:"hours"`
	Topics    []string `json:"topics"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	// Result carries what was computed when only the save failed.
	Result any `json:"result,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toStudentDTO(s billing.Student) StudentDTO {
	dto := StudentDTO{
		ID:                  string(s.ID),
		Phone:               s.ID.Display(),
		Name:                s.Name,
		Email:               s.Email,
		Notes:               s.Notes,
		EnrollmentDate:      s.EnrollmentDate.String(),
		MonthlyFee:          s.MonthlyFee.Float64(),
		Status:              string(s.Status),
		CancellationFeePaid: s.CancellationFeePaid,
		CPF:                 s.Options.CPF,
		CourseType:          s.Options.CourseType,
		PlanLength:          s.PlanLength(),
		DueDay:              s.DueDay(),
	}
	if s.CancellationDate != nil {
		dto.CancellationDate = s.CancellationDate.String()
	}
	return dto
}

func toRegistrationDTO(reg *billing.Registration) RegistrationDTO {
	return RegistrationDTO{
		Student: toStudentDTO(reg.Student),
		Periods: toPeriodDTOs(reg.Periods),
	}
}

func toPeriodDTO(p billing.BillingPeriod) PeriodDTO {
	dto := PeriodDTO{
		ID:        string(p.ID),
		StudentID: string(p.StudentID),
		Month:     int(p.Ref.Month),
		Year:      p.Ref.Year,
		DueDate:   p.DueDate.String(),
		Amount:    p.Amount.Float64(),
		Status:    string(p.Status),
		Note:      p.Note,
	}
	if p.PaymentDate != nil {
		dto.PaymentDate = p.PaymentDate.String()
	}
	return dto
}

func toPeriodDTOs(periods []billing.BillingPeriod) []PeriodDTO {
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	return dtos
}

func toRevenueDTO(proj billing.RevenueProjection) RevenueDTO {
	return RevenueDTO{
		Month:     int(proj.Ref.Month),
		Year:      proj.Ref.Year,
		Students:  proj.Students,
		Expected:  proj.Expected.Float64(),
		Collected: proj.Collected.Float64(),
		Remaining: proj.Remaining.Float64(),
	}
}

func toArrearsDTO(rec billing.ArrearsRecord) ArrearsDTO {
	return ArrearsDTO{
		StudentID:    string(rec.Student.ID),
		Phone:        rec.Student.ID.Display(),
		Name:         rec.Student.Name,
		LastDueDate:  rec.LastDueDate.String(),
		DaysOverdue:  rec.DaysOverdue,
		OverdueCount: rec.OverdueCount,
		Outstanding:  rec.Outstanding.Float64(),
		HasSchedule:  rec.Oldest != nil,
	}
}

func toStatusTotalsDTO(t billing.StatusTotals) StatusTotalsDTO {
	dto := StatusTotalsDTO{
		Count:  make(map[string]int, len(billing.AllStatuses)),
		Amount: make(map[string]float64, len(billing.AllStatuses)),
		Total:  t.Total.Float64(),
	}
	for _, st := range billing.AllStatuses {
		dto.Count[string(st)] = t.Count[st]
		dto.Amount[string(st)] = t.Amount[st].Float64()
	}
	return dto
}

func toSummaryDTO(s billing.Summary) SummaryDTO {
	dto := SummaryDTO{
		From:   s.Window.Start.String(),
		To:     s.Window.End.String(),
		Totals: toStatusTotalsDTO(s.StatusTotals),
		Months: make([]MonthTotalsDTO, len(s.Months)),
	}
	for i, m := range s.Months {
		dto.Months[i] = MonthTotalsDTO{
			Month:           int(m.Ref.Month),
			Year:            m.Ref.Year,
			Label:           m.Ref.Label(),
			StatusTotalsDTO: toStatusTotalsDTO(m.StatusTotals),
		}
	}
	return dto
}

func toSessionDTO(s internship.Session) SessionDTO {
	return SessionDTO{
		ID:           string(s.ID),
		Date:         s.Date.String(),
		Topic:        s.Topic,
		Hours:        s.Duration.Float64(),
		Participants: s.Participants.Slice(),
		Notes:        s.Notes,
	}
}

func (req SessionRequest) toInput() billing.SessionInput {
	return billing.SessionInput{
		Date:         generic.ParseDateOrZero(req.Date),
		Topic:        req.Topic,
		Hours:        generic.Hours(req.Hours),
		Participants: req.Participants,
		Notes:        req.Notes,
	}
}
