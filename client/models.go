package client

import "time"

// Entity payloads mirror the HAP REST API's JSON contracts.

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Password     string    `json:"password,omitempty"`
	Role         string    `json:"role"`
	CreationDate time.Time `json:"creation_date"`
}

type Patient struct {
	ID              int    `json:"id"`
	UserID          int    `json:"user_id"`
	FullName        string `json:"full_name"`
	DateOfBirth     string `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	InsuranceNumber string `json:"insurance_number"`
}

type Doctor struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	FullName   string `json:"full_name"`
	Speciality string `json:"speciality"`
	Phone      string `json:"phone"`
	Status     bool   `json:"status"`
}

type Appointment struct {
	ID        int       `json:"id"`
	PatientID int       `json:"patient_id"`
	DoctorID  int       `json:"doctor_id"`
	DateTime  time.Time `json:"date_time"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Invoice struct {
	ID            int        `json:"id"`
	PatientID     int        `json:"patient_id"`
	AppointmentID *int       `json:"appointment_id,omitempty"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       time.Time  `json:"due_date"`
	IssuedAt      time.Time  `json:"issued_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	Notes         string     `json:"notes"`
}

type Payment struct {
	ID            int       `json:"id"`
	InvoiceID     int       `json:"invoice_id"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"date"`
	PaymentMethod string    `json:"method"`
	Notes         string    `json:"notes"`
}

type MedicalRecord struct {
	ID           int       `json:"id"`
	PatientID    int       `json:"patient_id"`
	DoctorID     int       `json:"doctor_id"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription"`
	CreationDate time.Time `json:"creation_date"`
}

// File is upload metadata only; the binary transfer itself is an opaque
// multipart exchange owned by the server.
type File struct {
	ID          int       `json:"id"`
	PatientID   int       `json:"patient_id"`
	DoctorID    int       `json:"doctor_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileURL     string    `json:"file_url"`
	Description string    `json:"description"`
	UploadDate  time.Time `json:"upload_date"`
}
