package models

import "time"

// TeamMember is one entry in the staffing-service directory snapshot.
type TeamMember struct {
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	Country    string `json:"country,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty"`
}

// MemberProfile is the per-user profile/contract view served by the
// staffing service.
type MemberProfile struct {
	Email         string     `json:"email"`
	FullName      string     `json:"fullName"`
	Position      string     `json:"position,omitempty"`
	Department    string     `json:"department,omitempty"`
	Country       string     `json:"country,omitempty"`
	ContractType  string     `json:"contractType,omitempty"`
	ContractStart *time.Time `json:"contractStart,omitempty"`
	ContractEnd   *time.Time `json:"contractEnd,omitempty"`
	Manager       string     `json:"manager,omitempty"`
}

// ExchangeRates is a snapshot of currency rates against the base currency.
type ExchangeRates struct {
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Holiday is a single public holiday in a country calendar.
type Holiday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
	Country   string `json:"countryCode"`
}

// LeaveRequest is a leave submission forwarded to the leave system.
type LeaveRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Type      string `json:"type" validate:"required,oneof=vacation sick unpaid other"`
	Comment   string `json:"comment,omitempty"`
}

// LeaveEntry is one leave record as reported back by the leave system.
type LeaveEntry struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Comment   string `json:"comment,omitempty"`
}

// ExpenseRefundRequest is an expense refund submission forwarded to the
// automation webhook.
type ExpenseRefundRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	Description string  `json:"description" validate:"required"`
	ReceiptURL  string  `json:"receipt_url,omitempty" validate:"omitempty,url"`
}

// NewsItem is one company news entry sourced from Notion.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}
