package scheduling

// Store path layout. Everything lives under the top-level clients
// collection; deleting clientPath(phone) cascades to the client's
// whole schedule because appointments live beneath it.

const clientsRoot = "clients"

func clientPath(phone string) string {
	return clientsRoot + "/" + phone
}

func schedulesPath(phone string) string {
	return clientPath(phone) + "/schedules"
}

func dayPath(phone, date string) string {
	return schedulesPath(phone) + "/" + date
}

func slotPath(phone, date, time string) string {
	return dayPath(phone, date) + "/" + time
}
