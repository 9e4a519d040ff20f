package api

import "github.com/montonitech/client-scheduling/internal/scheduling"

type LoginRequest struct {
	Whatsapp string `json:"whatsapp"`
}

type LoginResponse struct {
	Client   scheduling.Client `json:"client"`
	Greeting string            `json:"greeting"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`
}

type AvailabilityResponse struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

type ScheduleRequest struct {
	Date        string             `json:"date"`
	Time        string             `json:"time"`
	Observation string             `json:"observation"`
	Address     scheduling.Address `json:"address"`
}

// ScheduleResponse carries the stored appointment plus the two
// composed WhatsApp messages (client confirmation and company alert)
// with their deep links, ready for the page to open.
type ScheduleResponse struct {
	Appointment       scheduling.Appointment `json:"appointment"`
	ClientMessage     string                 `json:"clientMessage"`
	ClientMessageURL  string                 `json:"clientMessageUrl"`
	CompanyMessage    string                 `json:"companyMessage"`
	CompanyMessageURL string                 `json:"companyMessageUrl"`
}

// AppointmentPayload is the admin-side appointment form.
type AppointmentPayload struct {
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	IsOnline    bool                `json:"isOnline"`
	MeetLink    string              `json:"meetLink"`
	Observation string              `json:"observation"`
	Address     *scheduling.Address `json:"address,omitempty"`
}

type SaveClientRequest struct {
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Whatsapp    string              `json:"whatsapp"`
	Editing     bool                `json:"editing"`
	Appointment *AppointmentPayload `json:"appointment,omitempty"`
}

type SaveClientResponse struct {
	Client              scheduling.Client       `json:"client"`
	Appointment         *scheduling.Appointment `json:"appointment,omitempty"`
	ConfirmationMessage string                  `json:"confirmationMessage,omitempty"`
	ConfirmationURL     string                  `json:"confirmationUrl,omitempty"`
}

type UpdateAppointmentResponse struct {
	Appointment          scheduling.Appointment `json:"appointment"`
	AddressChanged       bool                   `json:"addressChanged"`
	ConfirmationMessage  string                 `json:"confirmationMessage"`
	ConfirmationURL      string                 `json:"confirmationUrl"`
	AddressChangeMessage string                 `json:"addressChangeMessage,omitempty"`
	AddressChangeURL     string                 `json:"addressChangeUrl,omitempty"`
}

type PostalResponse struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
