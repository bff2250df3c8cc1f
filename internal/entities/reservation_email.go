package entities

type ReservationEmailData struct {
	GuestName          string
	ReservationNumber  string
	StartDateFormatted string
	EndDateFormatted   string
	PickupLocation     string
	TotalAmount        int
	Status             string
	CurrentYear        int
}
