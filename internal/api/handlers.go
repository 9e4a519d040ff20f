package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/notify"
	"github.com/montonitech/client-scheduling/internal/postal"
	"github.com/montonitech/client-scheduling/internal/scheduling"
)

// loginHandler resolves a client by phone. A miss answers 404 with the
// not_registered code so the page can open the registration prompt.
func loginHandler(svc *scheduling.Service, sink analytics.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Whatsapp == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "whatsapp is required")
			return
		}

		client, err := svc.Lookup(r.Context(), req.Whatsapp)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		sink.Log(r.Context(), "client_login", map[string]string{"whatsapp": client.Whatsapp})

		writeJSON(w, http.StatusOK, LoginResponse{
			Client:   client,
			Greeting: notify.Greeting(time.Now().Hour()) + ", " + client.Name + "!",
		})
	}
}

func registerHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		client, err := svc.Register(r.Context(), scheduling.Client{
			Name:     req.Name,
			Email:    req.Email,
			Whatsapp: req.Whatsapp,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, LoginResponse{
			Client:   client,
			Greeting: notify.Greeting(time.Now().Hour()) + ", " + client.Name + "!",
		})
	}
}

func availabilityHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")
		date := r.URL.Query().Get("date")

		times, err := svc.AvailableTimes(r.Context(), phone, date)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{Date: date, Times: times})
	}
}

// scheduleHandler books a slot for a logged-in client and hands back
// the composed confirmation messages with their WhatsApp deep links.
func scheduleHandler(svc *scheduling.Service, composer *Composer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")

		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Schedule(r.Context(), phone, scheduling.ScheduleRequest{
			Date:        req.Date,
			Time:        req.Time,
			Observation: req.Observation,
			Address:     req.Address,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		client, err := svc.Lookup(r.Context(), phone)
		if err != nil && !errors.Is(err, scheduling.ErrClientNotFound) {
			writeDomainError(w, err)
			return
		}

		clientMsg := notify.ClientConfirmation(appt)
		companyMsg := notify.CompanyAlert(client.Name, client.Whatsapp, appt)

		writeJSON(w, http.StatusCreated, ScheduleResponse{
			Appointment:       appt,
			ClientMessage:     clientMsg,
			ClientMessageURL:  composer.ClientLink(phone, clientMsg),
			CompanyMessage:    companyMsg,
			CompanyMessageURL: composer.CompanyLink(companyMsg),
		})
	}
}

func postalHandler(lookup *postal.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cep := chi.URLParam(r, "cep")

		addr, err := lookup.Lookup(r.Context(), cep)
		if err != nil {
			writePostalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, PostalResponse{
			CEP:          cep,
			Street:       addr.Street,
			Neighborhood: addr.Neighborhood,
			City:         addr.City,
		})
	}
}

// Composer binds the deep-link helpers to the configured country code
// and company number.
type Composer struct {
	CountryCode     string
	CompanyWhatsapp string
}

func (c *Composer) ClientLink(phone, text string) string {
	return notify.DeepLink(c.CountryCode, phone, text)
}

func (c *Composer) CompanyLink(text string) string {
	return notify.DeepLink(c.CountryCode, c.CompanyWhatsapp, text)
}
