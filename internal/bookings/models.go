package bookings

import "time"

// Booking records a student's seat in a study session
type Booking struct {
	ID           int64     `json:"booking_id"`
	SessionID    int64     `json:"session_id"`
	StudentEmail string    `json:"student_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingDetail is a booking joined with its session for list views
type BookingDetail struct {
	Booking
	SessionTitle string  `json:"session_title"`
	TutorEmail   string  `json:"tutor_email"`
	Price        float64 `json:"price"`
}

// CreateBookingRequest is the payload for booking a session
type CreateBookingRequest struct {
	SessionID int64 `json:"session_id" binding:"required"`
}
