package scheduling

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/lock"
	"github.com/montonitech/client-scheduling/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryTree) {
	t.Helper()
	tree := store.NewMemoryTree()
	svc := NewService(tree, lock.NewLocalLocker(), analytics.NopSink{}, Config{
		InPersonCity:   "rio das ostras",
		RegisterPolicy: "upsert",
	})
	return svc, tree
}

func registerAna(t *testing.T, svc *Service) Client {
	t.Helper()
	c, err := svc.Register(context.Background(), Client{
		Name:     "Ana",
		Email:    "ana@example.com",
		Whatsapp: "22999998352",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return c
}

func inPersonRequest(date, slot string) ScheduleRequest {
	return ScheduleRequest{
		Date: date,
		Time: slot,
		Address: Address{
			CEP:          "28890000",
			Street:       "Rua das Flores",
			Number:       "100",
			Neighborhood: "Centro",
			City:         "Rio das Ostras",
		},
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Client{Name: "Ana", Email: "", Whatsapp: "22999998352"})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing email: got %v, want ErrMissingFields", err)
	}

	_, err = svc.Register(ctx, Client{Name: "Ana", Email: "a@b.com", Whatsapp: "123"})
	if !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("short phone: got %v, want ErrInvalidPhone", err)
	}

	c, err := svc.Register(ctx, Client{Name: "Ana", Email: "a@b.com", Whatsapp: "(22) 99999-8352"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.Whatsapp != "22999998352" {
		t.Errorf("normalized phone = %q, want 22999998352", c.Whatsapp)
	}
}

func TestRegisterPolicies(t *testing.T) {
	ctx := context.Background()

	// Upsert silently replaces the record.
	svc, _ := newTestService(t)
	registerAna(t, svc)
	c, err := svc.Register(ctx, Client{Name: "Ana Maria", Email: "ana@example.com", Whatsapp: "22999998352"})
	if err != nil {
		t.Fatalf("upsert re-register: %v", err)
	}
	if c.Name != "Ana Maria" {
		t.Errorf("upsert kept old name %q", c.Name)
	}

	// Reject refuses the second registration.
	tree := store.NewMemoryTree()
	strict := NewService(tree, lock.NewLocalLocker(), analytics.NopSink{}, Config{
		InPersonCity:   "rio das ostras",
		RegisterPolicy: "reject",
	})
	registerAna(t, strict)
	_, err = strict.Register(ctx, Client{Name: "Outro", Email: "x@y.com", Whatsapp: "22999998352"})
	if !errors.Is(err, ErrClientExists) {
		t.Errorf("reject re-register: got %v, want ErrClientExists", err)
	}
}

func TestLookup(t *testing.T) {
	svc, _ := newTestService(t)
	registerAna(t, svc)

	c, err := svc.Lookup(context.Background(), "22 99999-8352")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if c.Name != "Ana" {
		t.Errorf("lookup name = %q, want Ana", c.Name)
	}

	_, err = svc.Lookup(context.Background(), "21988887777")
	if !errors.Is(err, ErrClientNotFound) {
		t.Errorf("unknown phone: got %v, want ErrClientNotFound", err)
	}
}

func TestAvailableTimes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	times, err := svc.AvailableTimes(ctx, c.Whatsapp, "2025-06-10")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !reflect.DeepEqual(times, Catalog) {
		t.Errorf("fresh date availability = %v, want full catalog %v", times, Catalog)
	}

	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "11:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	times, err = svc.AvailableTimes(ctx, c.Whatsapp, "2025-06-10")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	want := []string{"09:00", "13:00", "15:00"}
	if !reflect.DeepEqual(times, want) {
		t.Errorf("availability after booking = %v, want %v", times, want)
	}

	// A different date is unaffected.
	times, err = svc.AvailableTimes(ctx, c.Whatsapp, "2025-06-11")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !reflect.DeepEqual(times, Catalog) {
		t.Errorf("other date availability = %v, want full catalog", times)
	}

	// Unknown clients see an empty set, not an error.
	times, err = svc.AvailableTimes(ctx, "21988887777", "2025-06-10")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(times) != 0 {
		t.Errorf("unknown client availability = %v, want empty", times)
	}
}

func TestScheduleModalityFromCity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	appt, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00"))
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if appt.IsOnline {
		t.Error("Rio das Ostras booking marked online")
	}

	req := inPersonRequest("2025-06-10", "11:00")
	req.Address.City = "Rio De Janeiro"
	appt, err = svc.Schedule(ctx, c.Whatsapp, req)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !appt.IsOnline {
		t.Error("Rio De Janeiro booking not marked online")
	}
}

func TestScheduleValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	req := inPersonRequest("", "09:00")
	if _, err := svc.Schedule(ctx, c.Whatsapp, req); !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing date: got %v, want ErrMissingFields", err)
	}

	req = inPersonRequest("2025-06-10", "10:30")
	if _, err := svc.Schedule(ctx, c.Whatsapp, req); !errors.Is(err, ErrTimeNotInCatalog) {
		t.Errorf("off-catalog time: got %v, want ErrTimeNotInCatalog", err)
	}

	req = inPersonRequest("2025-06-10", "09:00")
	req.Address.Street = ""
	if _, err := svc.Schedule(ctx, c.Whatsapp, req); !errors.Is(err, ErrMissingAddress) {
		t.Errorf("missing street: got %v, want ErrMissingAddress", err)
	}

	req = inPersonRequest("2025-06-10", "09:00")
	req.Address.CEP = "123"
	if _, err := svc.Schedule(ctx, c.Whatsapp, req); !errors.Is(err, ErrInvalidCEP) {
		t.Errorf("short cep: got %v, want ErrInvalidCEP", err)
	}

	if _, err := svc.Schedule(ctx, "21988887777", inPersonRequest("2025-06-10", "09:00")); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("unregistered client: got %v, want ErrClientNotFound", err)
	}
}

func TestDoubleBookingRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	first, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	req := inPersonRequest("2025-06-10", "09:00")
	req.Observation = "second attempt"
	if _, err := svc.Schedule(ctx, c.Whatsapp, req); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second booking: got %v, want ErrSlotTaken", err)
	}

	// The stored record is still the first one.
	got, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00")
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if got.Observation != first.Observation {
		t.Errorf("second attempt overwrote the record: %+v", got)
	}

	entries, err := svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want exactly 1", len(entries))
	}
}

func TestSameSlotDifferentClients(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerAna(t, svc)

	other, err := svc.Register(ctx, Client{Name: "Bruno", Email: "bruno@example.com", Whatsapp: "21988887777"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Schedule(ctx, "22999998352", inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("first client: %v", err)
	}
	// Availability is per client, not a global pool.
	if _, err := svc.Schedule(ctx, other.Whatsapp, inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("second client, same slot: %v", err)
	}
}

func TestUpdateAppointmentMove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	req := inPersonRequest("2025-06-10", "09:00")
	req.Observation = "trazer documentos"
	orig, err := svc.Schedule(ctx, c.Whatsapp, req)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	moved := orig
	moved.Time = "11:00"
	if _, err := svc.UpdateAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00", moved); err != nil {
		t.Fatalf("move: %v", err)
	}

	// Old key is gone, new key carries the fields over.
	if _, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("old slot still present: %v", err)
	}
	got, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "11:00")
	if err != nil {
		t.Fatalf("get moved: %v", err)
	}
	if got.Observation != "trazer documentos" {
		t.Errorf("observation not carried over: %q", got.Observation)
	}
	if got.Address == nil || got.Address.City != "Rio das Ostras" {
		t.Errorf("address not carried over: %+v", got.Address)
	}
}

func TestUpdateAppointmentMoveToOccupiedSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "11:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	moved, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	moved.Time = "11:00"

	if _, err := svc.UpdateAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00", moved); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("move to occupied: got %v, want ErrSlotTaken", err)
	}

	// The guard ran before any mutation: the original record survives.
	if _, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00"); err != nil {
		t.Errorf("original appointment lost after rejected move: %v", err)
	}
}

func TestUpdateAppointmentInPlace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	appt, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	appt.Observation = "nova observação"

	if _, err := svc.UpdateAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00", appt); err != nil {
		t.Fatalf("in-place update: %v", err)
	}

	got, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Observation != "nova observação" {
		t.Errorf("observation = %q, want updated value", got.Observation)
	}
}

func TestDeleteAppointment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "11:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := svc.DeleteAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "09:00"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("deleted slot still readable: %v", err)
	}
	if _, err := svc.GetAppointment(ctx, c.Whatsapp, "2025-06-10", "11:00"); err != nil {
		t.Errorf("sibling slot lost: %v", err)
	}
}

func TestDeleteClientCascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := registerAna(t, svc)

	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Schedule(ctx, c.Whatsapp, inPersonRequest("2025-06-11", "13:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := svc.DeleteClient(ctx, c.Whatsapp); err != nil {
		t.Fatalf("delete client: %v", err)
	}

	if _, err := svc.Lookup(ctx, c.Whatsapp); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("client still present: %v", err)
	}
	entries, err := svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after cascade delete, want 0", len(entries))
	}
}

func TestListEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registerAna(t, svc)
	if _, err := svc.Register(ctx, Client{Name: "Bruno", Email: "bruno@example.com", Whatsapp: "21988887777"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Schedule(ctx, "22999998352", inPersonRequest("2025-06-10", "09:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Schedule(ctx, "22999998352", inPersonRequest("2025-06-10", "11:00")); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	entries, err := svc.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// Ana twice (one row per appointment), Bruno once with none.
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Client.Name != "Ana" || entries[0].Appointment == nil {
		t.Errorf("first entry = %+v, want Ana with appointment", entries[0])
	}
	if entries[0].Appointment.Time != "09:00" || entries[1].Appointment.Time != "11:00" {
		t.Errorf("appointments out of order: %s, %s", entries[0].Appointment.Time, entries[1].Appointment.Time)
	}
	if entries[2].Client.Name != "Bruno" || entries[2].Appointment != nil {
		t.Errorf("last entry = %+v, want Bruno without appointment", entries[2])
	}
}
