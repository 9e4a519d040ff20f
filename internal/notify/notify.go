// Package notify renders the WhatsApp messages sent after a booking is
// created or changed, plus the deep links that open them in a chat.
// Everything here is pure formatting; opening the link is the
// frontend's job and failures there are reported, never retried.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/montonitech/client-scheduling/internal/scheduling"
)

const companyName = "Montoni Tech Soluções"

// FormatDate turns an ISO date (2025-06-10) into the day/month/year
// form used in every message (10/06/2025).
func FormatDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return "—"
	}
	return fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0])
}

// FormatAddress renders an in-person meeting location on one line.
func FormatAddress(a scheduling.Address) string {
	return fmt.Sprintf("%s, %s, %s, %s - CEP: %s", a.Street, a.Number, a.Neighborhood, a.City, a.CEP)
}

// Greeting picks the salutation for an hour of the day.
func Greeting(hour int) string {
	switch {
	case hour >= 0 && hour < 12:
		return "Bom dia"
	case hour >= 12 && hour < 18:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// DeepLink builds a wa.me URL that opens a chat with phone, a
// normalized national number, pre-filled with text.
func DeepLink(countryCode, phone, text string) string {
	number := countryCode + scheduling.NormalizePhone(phone)
	return fmt.Sprintf("https://wa.me/+%s?text=%s", number, url.QueryEscape(text))
}

// ClientConfirmation is the message sent to the client right after the
// public booking flow succeeds.
func ClientConfirmation(appt scheduling.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Confirmação de agendamento - %s\n\n", companyName)
	fmt.Fprintf(&b, "Nossa Equipe da %s recebeu seu agendamento!\n\n", companyName)

	details := fmt.Sprintf("Data: %s, Horário: %s", FormatDate(appt.Date), appt.Time)
	if appt.IsOnline {
		fmt.Fprintf(&b, "Reunião ONLINE\n%s\n", details)
		b.WriteString("Link do Google Meet: Em breve você receberá o link da reunião.\n")
	} else {
		fmt.Fprintf(&b, "Reunião PRESENCIAL\n%s\n", details)
		fmt.Fprintf(&b, "Endereço: %s\n", FormatAddress(deref(appt.Address)))
	}
	fmt.Fprintf(&b, "Observações: %s", orDefault(appt.Observation, "Nenhuma"))
	return b.String()
}

// CompanyAlert is the message sent to the company number announcing a
// new booking.
func CompanyAlert(clientName, phone string, appt scheduling.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Novo agendamento - %s\n\n", companyName)
	fmt.Fprintf(&b, "Cliente: %s (WhatsApp: %s)\n", orDefault(clientName, "Cliente Desconhecido"), phone)
	fmt.Fprintf(&b, "Data: %s, Horário: %s\n", FormatDate(appt.Date), appt.Time)
	if appt.IsOnline {
		b.WriteString("Reunião ONLINE\nLink do Google Meet: Será definido em breve.\n")
	} else {
		fmt.Fprintf(&b, "Reunião PRESENCIAL\nEndereço: %s\n", FormatAddress(deref(appt.Address)))
	}
	fmt.Fprintf(&b, "Observações: %s", orDefault(appt.Observation, "Nenhuma"))
	return b.String()
}

// BookingDetails is the confirmation the admin may forward to a client
// after adding or editing an appointment.
func BookingDetails(clientName string, appt scheduling.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s! Tudo certo com seu agendamento!\n\n", clientName)
	b.WriteString("*Detalhes da Reunião:*\n")
	fmt.Fprintf(&b, "- Data: %s\n", FormatDate(appt.Date))
	fmt.Fprintf(&b, "- Horário: %s\n", appt.Time)
	if appt.IsOnline {
		b.WriteString("- Modalidade: Online\n")
		link := "Ainda não disponível"
		if appt.MeetLink != nil && *appt.MeetLink != "" {
			link = *appt.MeetLink
		}
		fmt.Fprintf(&b, "- Link da reunião: %s\n", link)
	} else {
		b.WriteString("- Modalidade: Presencial\n")
		fmt.Fprintf(&b, "- Endereço: %s\n", FormatAddress(deref(appt.Address)))
	}
	if appt.Observation != "" {
		fmt.Fprintf(&b, "- Observações: %s\n", appt.Observation)
	}
	b.WriteString("\nEstamos ansiosos para te atender!")
	return b.String()
}

// AddressChange tells the client the location of an in-person meeting
// moved.
func AddressChange(clientName string, appt scheduling.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s! Houve uma alteração no endereço da sua reunião presencial.\n\n", clientName)
	b.WriteString("*Detalhes Atualizados:*\n")
	fmt.Fprintf(&b, "- Data: %s\n", FormatDate(appt.Date))
	fmt.Fprintf(&b, "- Horário: %s\n", appt.Time)
	fmt.Fprintf(&b, "- Novo Endereço: %s\n", FormatAddress(deref(appt.Address)))
	if appt.Observation != "" {
		fmt.Fprintf(&b, "- Observações: %s\n", appt.Observation)
	}
	b.WriteString("\nEstamos ansiosos para te atender!")
	return b.String()
}

func deref(a *scheduling.Address) scheduling.Address {
	if a == nil {
		return scheduling.Address{}
	}
	return *a
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
