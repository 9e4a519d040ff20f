package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/notify"
	"github.com/montonitech/client-scheduling/internal/scheduling"
)

// adminLoginHandler verifies the shared password so the page can
// decide whether to show the management view. The actual protection is
// the AdminGate on every admin route.
func adminLoginHandler(password string, sink analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "senha incorreta")
			return
		}

		sink.Log(r.Context(), "admin_login", nil)
		w.WriteHeader(http.StatusNoContent)
	}
}

func listEntriesHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListEntries(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if entries == nil {
			entries = []scheduling.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// saveClientHandler upserts a client and, when the form bundles an
// initial appointment, books it through the same conflict guard the
// public flow uses.
func saveClientHandler(svc *scheduling.Service, composer *Composer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.Appointment != nil && req.Appointment.Date != "" && req.Appointment.Time == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "appointment time is required")
			return
		}

		client, err := svc.SaveClient(r.Context(), scheduling.Client{
			Name:     req.Name,
			Email:    req.Email,
			Whatsapp: req.Whatsapp,
		}, req.Editing)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := SaveClientResponse{Client: client}

		if req.Appointment != nil && req.Appointment.Date != "" && req.Appointment.Time != "" {
			appt, err := svc.AddAppointment(r.Context(), client.Whatsapp, toAppointment(*req.Appointment))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			msg := notify.BookingDetails(client.Name, appt)
			resp.Appointment = &appt
			resp.ConfirmationMessage = msg
			resp.ConfirmationURL = composer.ClientLink(client.Whatsapp, msg)
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func deleteClientHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteClient(r.Context(), chi.URLParam(r, "phone")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// updateAppointmentHandler edits the appointment addressed by the URL
// key. When the body carries a different (date, time) the edit becomes
// a move, guarded against conflicts before anything is touched.
func updateAppointmentHandler(svc *scheduling.Service, composer *Composer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")
		origDate := chi.URLParam(r, "date")
		origTime := chi.URLParam(r, "time")

		var req AppointmentPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		orig, err := svc.GetAppointment(r.Context(), phone, origDate, origTime)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), phone, origDate, origTime, toAppointment(req))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		client, lookupErr := svc.Lookup(r.Context(), phone)
		name := client.Name
		if lookupErr != nil {
			name = "Cliente"
		}

		msg := notify.BookingDetails(name, appt)
		resp := UpdateAppointmentResponse{
			Appointment:         appt,
			ConfirmationMessage: msg,
			ConfirmationURL:     composer.ClientLink(phone, msg),
		}

		if !appt.IsOnline && addressChanged(orig.Address, appt.Address) {
			change := notify.AddressChange(name, appt)
			resp.AddressChanged = true
			resp.AddressChangeMessage = change
			resp.AddressChangeURL = composer.ClientLink(phone, change)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")
		date := chi.URLParam(r, "date")
		time := chi.URLParam(r, "time")

		if err := svc.DeleteAppointment(r.Context(), phone, date, time); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toAppointment(p AppointmentPayload) scheduling.Appointment {
	appt := scheduling.Appointment{
		Date:        p.Date,
		Time:        p.Time,
		IsOnline:    p.IsOnline,
		Observation: p.Observation,
	}
	if p.IsOnline {
		if p.MeetLink != "" {
			link := p.MeetLink
			appt.MeetLink = &link
		}
	} else {
		appt.Address = p.Address
	}
	return appt
}

func addressChanged(old, updated *scheduling.Address) bool {
	switch {
	case old == nil && updated == nil:
		return false
	case old == nil || updated == nil:
		return true
	default:
		return *old != *updated
	}
}
