package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/lock"
	"github.com/montonitech/client-scheduling/internal/store"
)

var (
	ErrClientNotFound      = errors.New("client not registered")
	ErrClientExists        = errors.New("client already registered")
	ErrSlotTaken           = errors.New("slot already booked for this client")
	ErrSlotBusy            = errors.New("slot is being booked, retry shortly")
	ErrMissingFields       = errors.New("required fields missing")
	ErrInvalidPhone        = errors.New("phone must be 10 or 11 digits")
	ErrInvalidCEP          = errors.New("postal code must be 8 digits")
	ErrInvalidDate         = errors.New("date must be an ISO calendar date")
	ErrTimeNotInCatalog    = errors.New("time is not a bookable slot")
	ErrInvalidMeetLink     = errors.New("meeting link is not a valid URL")
	ErrMissingAddress      = errors.New("address fields are required for in-person meetings")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Config holds the policy knobs the service needs.
type Config struct {
	InPersonCity   string // meetings in this city are presencial
	RegisterPolicy string // "upsert" or "reject" on re-registration
}

// Service implements both the client booking flow and the admin
// management flow over the document tree. Both flows share the same
// conflict guard (place), so the no-double-booking rule exists exactly
// once.
type Service struct {
	tree   store.Tree
	locker lock.Locker
	sink   analytics.Sink
	cfg    Config
}

func NewService(tree store.Tree, locker lock.Locker, sink analytics.Sink, cfg Config) *Service {
	return &Service{tree: tree, locker: locker, sink: sink, cfg: cfg}
}

// Lookup resolves a client by phone number. The login step of the
// public page is exactly this read: a hit is a session, a miss sends
// the visitor to registration.
func (s *Service) Lookup(ctx context.Context, phone string) (Client, error) {
	phone = NormalizePhone(phone)
	if !ValidPhone(phone) {
		return Client{}, ErrInvalidPhone
	}

	var c Client
	if err := s.tree.Get(ctx, clientPath(phone), &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Client{}, ErrClientNotFound
		}
		return Client{}, fmt.Errorf("load client: %w", err)
	}
	return c, nil
}

// Register creates the client record for the public registration flow.
// Whether an existing record is overwritten or rejected is an explicit
// policy decision (RegisterPolicy).
func (s *Service) Register(ctx context.Context, c Client) (Client, error) {
	if c.Name == "" || c.Email == "" || c.Whatsapp == "" {
		return Client{}, ErrMissingFields
	}

	c.Whatsapp = NormalizePhone(c.Whatsapp)
	if !ValidPhone(c.Whatsapp) {
		return Client{}, ErrInvalidPhone
	}

	if s.cfg.RegisterPolicy == "reject" {
		exists, err := s.tree.Exists(ctx, clientPath(c.Whatsapp))
		if err != nil {
			return Client{}, fmt.Errorf("check client: %w", err)
		}
		if exists {
			return Client{}, ErrClientExists
		}
	}

	if err := s.tree.Set(ctx, clientPath(c.Whatsapp), c); err != nil {
		return Client{}, fmt.Errorf("save client: %w", err)
	}

	s.sink.Log(ctx, "client_registered", map[string]string{"whatsapp": c.Whatsapp})
	return c, nil
}

// SaveClient is the admin create/update of a client record. It always
// upserts; editing marks whether the operator started from an existing
// row, which only changes the logged event.
func (s *Service) SaveClient(ctx context.Context, c Client, editing bool) (Client, error) {
	if c.Name == "" || c.Email == "" || c.Whatsapp == "" {
		return Client{}, ErrMissingFields
	}

	c.Whatsapp = NormalizePhone(c.Whatsapp)
	if !ValidPhone(c.Whatsapp) {
		return Client{}, ErrInvalidPhone
	}

	if err := s.tree.Set(ctx, clientPath(c.Whatsapp), c); err != nil {
		return Client{}, fmt.Errorf("save client: %w", err)
	}

	event := "admin_add_user"
	if editing {
		event = "admin_edit_user"
	}
	s.sink.Log(ctx, event, map[string]string{"whatsapp": c.Whatsapp})
	return c, nil
}

// AvailableTimes projects the catalog onto what the client has not yet
// booked for the date. An unresolved client yields the empty set, not
// an error; store failures are surfaced.
func (s *Service) AvailableTimes(ctx context.Context, phone, date string) ([]string, error) {
	phone = NormalizePhone(phone)
	if phone == "" || date == "" {
		return []string{}, nil
	}

	known, err := s.tree.Exists(ctx, clientPath(phone))
	if err != nil {
		return nil, fmt.Errorf("check client: %w", err)
	}
	if !known {
		return []string{}, nil
	}

	booked, err := s.tree.ListSubtree(ctx, dayPath(phone, date))
	if err != nil {
		return nil, fmt.Errorf("load schedule for %s: %w", date, err)
	}

	available := make([]string, 0, len(Catalog))
	for _, t := range Catalog {
		if _, taken := booked[t]; !taken {
			available = append(available, t)
		}
	}
	return available, nil
}

// ScheduleRequest carries the client booking form.
type ScheduleRequest struct {
	Date        string
	Time        string
	Observation string
	Address     Address
}

// Schedule books a meeting for a logged-in client. The full address is
// required; the modality is derived from the city.
func (s *Service) Schedule(ctx context.Context, phone string, req ScheduleRequest) (Appointment, error) {
	phone = NormalizePhone(phone)
	if !ValidPhone(phone) {
		return Appointment{}, ErrInvalidPhone
	}

	if req.Date == "" || req.Time == "" {
		return Appointment{}, ErrMissingFields
	}
	if !ValidDate(req.Date) {
		return Appointment{}, ErrInvalidDate
	}
	if !inCatalog(req.Time) {
		return Appointment{}, ErrTimeNotInCatalog
	}

	a := req.Address
	if a.CEP == "" || a.Street == "" || a.Number == "" || a.Neighborhood == "" || a.City == "" {
		return Appointment{}, ErrMissingAddress
	}
	if !ValidCEP(a.CEP) {
		return Appointment{}, ErrInvalidCEP
	}

	known, err := s.tree.Exists(ctx, clientPath(phone))
	if err != nil {
		return Appointment{}, fmt.Errorf("check client: %w", err)
	}
	if !known {
		return Appointment{}, ErrClientNotFound
	}

	appt := Appointment{
		Date:        req.Date,
		Time:        req.Time,
		IsOnline:    OnlineFor(a.City, s.cfg.InPersonCity),
		Address:     &a,
		Observation: req.Observation,
	}

	if err := s.place(ctx, phone, appt); err != nil {
		return Appointment{}, err
	}

	s.sink.Log(ctx, "meeting_scheduled", map[string]string{
		"whatsapp":    phone,
		"date":        appt.Date,
		"time":        appt.Time,
		"observation": orDefault(appt.Observation, "Nenhuma observação"),
		"isOnline":    fmt.Sprintf("%t", appt.IsOnline),
	})
	return appt, nil
}

// AddAppointment is the admin add, optionally bundled with client
// creation. Unlike the client flow the address is free-form and the
// modality is chosen by the operator.
func (s *Service) AddAppointment(ctx context.Context, phone string, appt Appointment) (Appointment, error) {
	phone = NormalizePhone(phone)
	if !ValidPhone(phone) {
		return Appointment{}, ErrInvalidPhone
	}
	if err := validateAdminAppointment(appt); err != nil {
		return Appointment{}, err
	}

	if err := s.place(ctx, phone, appt); err != nil {
		return Appointment{}, err
	}

	s.sink.Log(ctx, "admin_add_schedule", map[string]string{
		"whatsapp": phone,
		"date":     appt.Date,
		"time":     appt.Time,
	})
	return appt, nil
}

// GetAppointment loads one appointment by its (date, time) key.
func (s *Service) GetAppointment(ctx context.Context, phone, date, time string) (Appointment, error) {
	phone = NormalizePhone(phone)

	var appt Appointment
	if err := s.tree.Get(ctx, slotPath(phone, date, time), &appt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Appointment{}, ErrAppointmentNotFound
		}
		return Appointment{}, fmt.Errorf("load appointment: %w", err)
	}
	return appt, nil
}

// UpdateAppointment rewrites an appointment, moving it when the
// (date, time) key changed. A move is write-new-then-delete-old across
// two store calls with no transaction: a failure in between leaves
// both records, which the admin sees as two rows on the next listing.
func (s *Service) UpdateAppointment(ctx context.Context, phone, origDate, origTime string, appt Appointment) (Appointment, error) {
	phone = NormalizePhone(phone)
	if !ValidPhone(phone) {
		return Appointment{}, ErrInvalidPhone
	}
	if err := validateAdminAppointment(appt); err != nil {
		return Appointment{}, err
	}

	moved := appt.Date != origDate || appt.Time != origTime
	if moved {
		if err := s.place(ctx, phone, appt); err != nil {
			return Appointment{}, err
		}
		if err := s.tree.DeleteSubtree(ctx, slotPath(phone, origDate, origTime)); err != nil {
			return appt, fmt.Errorf("remove old appointment: %w", err)
		}
	} else {
		if err := s.tree.Set(ctx, slotPath(phone, appt.Date, appt.Time), appt); err != nil {
			return Appointment{}, fmt.Errorf("save appointment: %w", err)
		}
	}

	s.sink.Log(ctx, "admin_edit_schedule", map[string]string{
		"whatsapp": phone,
		"date":     appt.Date,
		"time":     appt.Time,
	})
	return appt, nil
}

// DeleteAppointment removes exactly one (date, time) entry.
func (s *Service) DeleteAppointment(ctx context.Context, phone, date, time string) error {
	phone = NormalizePhone(phone)

	if err := s.tree.DeleteSubtree(ctx, slotPath(phone, date, time)); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.sink.Log(ctx, "admin_delete_schedule", map[string]string{
		"whatsapp": phone,
		"date":     date,
		"time":     time,
	})
	return nil
}

// DeleteClient removes the client subtree. The cascade to the client's
// appointments is a property of subtree deletion, not an extra step.
func (s *Service) DeleteClient(ctx context.Context, phone string) error {
	phone = NormalizePhone(phone)

	if err := s.tree.DeleteSubtree(ctx, clientPath(phone)); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.sink.Log(ctx, "admin_delete_user", map[string]string{"whatsapp": phone})
	return nil
}

// ListEntries flattens every client with each of its appointments into
// admin rows, sorted by client name. A schedule entry whose client
// record is missing (the inconsistency window of a failed cascade or
// move) still shows up, with placeholder client fields.
func (s *Service) ListEntries(ctx context.Context) ([]Entry, error) {
	docs, err := s.tree.ListSubtree(ctx, clientsRoot)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	clients := make(map[string]Client)
	appts := make(map[string][]Appointment)

	for rel, raw := range docs {
		parts := strings.Split(rel, "/")
		switch {
		case len(parts) == 1:
			var c Client
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode client %s: %w", rel, err)
			}
			if c.Whatsapp == "" {
				c.Whatsapp = parts[0]
			}
			clients[parts[0]] = c
		case len(parts) == 4 && parts[1] == "schedules":
			var a Appointment
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("decode appointment %s: %w", rel, err)
			}
			// The path is authoritative for the key.
			a.Date, a.Time = parts[2], parts[3]
			appts[parts[0]] = append(appts[parts[0]], a)
		}
	}

	for phone := range appts {
		if _, ok := clients[phone]; !ok {
			clients[phone] = Client{Name: "Sem nome", Email: "Sem email", Whatsapp: phone}
		}
	}

	var entries []Entry
	for phone, c := range clients {
		list := appts[phone]
		if len(list) == 0 {
			entries = append(entries, Entry{Client: c})
			continue
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Date != list[j].Date {
				return list[i].Date < list[j].Date
			}
			return list[i].Time < list[j].Time
		})
		for i := range list {
			entries = append(entries, Entry{Client: c, Appointment: &list[i]})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ni := strings.ToLower(entries[i].Client.Name)
		nj := strings.ToLower(entries[j].Client.Name)
		if ni != nj {
			return ni < nj
		}
		return entries[i].Client.Whatsapp < entries[j].Client.Whatsapp
	})

	return entries, nil
}

// place is the booking conflict guard: a check-then-write pair under
// the per-slot lock. Every path that creates an appointment, client
// booking and admin add/move alike, goes through here.
func (s *Service) place(ctx context.Context, phone string, appt Appointment) error {
	path := slotPath(phone, appt.Date, appt.Time)

	err := s.locker.WithLock(ctx, lock.SlotKey(phone, appt.Date, appt.Time), func(ctx context.Context) error {
		taken, err := s.tree.Exists(ctx, path)
		if err != nil {
			return fmt.Errorf("check slot: %w", err)
		}
		if taken {
			return ErrSlotTaken
		}
		if err := s.tree.Set(ctx, path, appt); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		return nil
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrSlotBusy
	}
	return err
}

func validateAdminAppointment(appt Appointment) error {
	if appt.Date == "" || appt.Time == "" {
		return ErrMissingFields
	}
	if !ValidDate(appt.Date) {
		return ErrInvalidDate
	}
	if appt.IsOnline && appt.MeetLink != nil && *appt.MeetLink != "" && !ValidURL(*appt.MeetLink) {
		return ErrInvalidMeetLink
	}
	if appt.Address != nil && appt.Address.CEP != "" && !ValidCEP(appt.Address.CEP) {
		return ErrInvalidCEP
	}
	return nil
}

func inCatalog(t string) bool {
	for _, c := range Catalog {
		if c == t {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
