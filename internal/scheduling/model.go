package scheduling

import "strings"

// Catalog is the fixed list of bookable times per day. Its order is
// also the display order; availability results never reorder it.
var Catalog = []string{"09:00", "11:00", "13:00", "15:00"}

// Client is the document stored at clients/{phone}. Whatsapp is the
// normalized phone number and doubles as the client identifier.
type Client struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`
}

// Address holds the in-person meeting location, filled from the postal
// lookup plus the street number typed by the user.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// Appointment is the document stored at
// clients/{phone}/schedules/{date}/{time}. MeetLink is present only
// for online meetings, Address only for in-person ones.
type Appointment struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	IsOnline    bool     `json:"isOnline"`
	MeetLink    *string  `json:"meetLink,omitempty"`
	Address     *Address `json:"address,omitempty"`
	Observation string   `json:"observation"`
}

// Entry is one row of the admin listing: a client paired with one of
// its appointments, or with none when the client has no bookings.
type Entry struct {
	Client      Client       `json:"client"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

// OnlineFor decides the meeting modality from the city: anything other
// than the configured in-person city means the meeting happens online.
func OnlineFor(city, inPersonCity string) bool {
	return !strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(inPersonCity))
}
