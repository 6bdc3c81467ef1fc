package mail

// Task payloads are flat primitive fields only (ids, emails, ISO date
// strings, decimal-as-string prices) so a task can be executed by a
// worker in another process.

type ConfirmationPayload struct {
	BookingID       int64  `json:"booking_id"`
	UserEmail       string `json:"user_email"`
	UserName        string `json:"user_name"`
	ListingTitle    string `json:"listing_title"`
	ListingLocation string `json:"listing_location,omitempty"`
	HostName        string `json:"host_name,omitempty"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	TotalPrice      string `json:"total_price"`
}

type RequestPayload struct {
	BookingID       int64  `json:"booking_id"`
	HostEmail       string `json:"host_email"`
	HostName        string `json:"host_name"`
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone,omitempty"`
	ListingTitle    string `json:"listing_title"`
	ListingLocation string `json:"listing_location,omitempty"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	Guests          int    `json:"guests"`
	TotalPrice      string `json:"total_price"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type ReminderPayload struct {
	BookingID       int64  `json:"booking_id"`
	UserEmail       string `json:"user_email"`
	UserName        string `json:"user_name"`
	ListingTitle    string `json:"listing_title"`
	ListingLocation string `json:"listing_location,omitempty"`
	CheckInDate     string `json:"check_in_date"`
}

type CancellationPayload struct {
	BookingID          int64  `json:"booking_id"`
	UserEmail          string `json:"user_email"`
	UserName           string `json:"user_name"`
	ListingTitle       string `json:"listing_title"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type BulkPromotionalPayload struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}
