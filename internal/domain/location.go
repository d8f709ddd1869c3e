package domain

import "time"

// SMSStatus is the delivery classification recorded for a tracking SMS.
type SMSStatus string

const (
	SMSStatusSent     SMSStatus = "sent"
	SMSStatusRejected SMSStatus = "rejected"
	SMSStatusError    SMSStatus = "error"
)

// LocationRequest is one outbound tracking attempt. CorrelationID is the
// random token embedded in the tracking link; it is the only capability
// needed to submit a report for this request.
type LocationRequest struct {
	ID            int64     `db:"id" json:"-"`
	CorrelationID string    `db:"correlation_id" json:"correlationId"`
	AccountID     int64     `db:"account_id" json:"-"`
	PhoneCode     string    `db:"phone_code" json:"phoneCode"`
	PhoneNumber   string    `db:"phone_number" json:"phoneNumber"`
	CountryCode   string    `db:"country_code" json:"countryCode"`
	SMSStatus     SMSStatus `db:"sms_status" json:"smsStatus"`
	Fulfilled     bool      `db:"fulfilled" json:"fulfilled"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// LocationReport is the GPS submission matching one LocationRequest.
// At most one report exists per request; a second submission overwrites it.
type LocationReport struct {
	ID                int64     `db:"id" json:"-"`
	LocationRequestID int64     `db:"location_request_id" json:"-"`
	Latitude          float64   `db:"latitude" json:"latitude"`
	Longitude         float64   `db:"longitude" json:"longitude"`
	City              string    `db:"city" json:"city"`
	CapturedAt        time.Time `db:"captured_at" json:"capturedAt"`
}

// HistoryEntry is a LocationRequest left-joined with its report, as returned
// by the history endpoint. Report columns are nil while unfulfilled.
type HistoryEntry struct {
	CorrelationID string     `db:"correlation_id" json:"correlationId"`
	PhoneCode     string     `db:"phone_code" json:"phoneCode"`
	PhoneNumber   string     `db:"phone_number" json:"phoneNumber"`
	CountryCode   string     `db:"country_code" json:"countryCode"`
	SMSStatus     SMSStatus  `db:"sms_status" json:"smsStatus"`
	Fulfilled     bool       `db:"fulfilled" json:"fulfilled"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	Latitude      *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64   `db:"longitude" json:"longitude,omitempty"`
	City          *string    `db:"city" json:"city,omitempty"`
	CapturedAt    *time.Time `db:"captured_at" json:"capturedAt,omitempty"`
}
