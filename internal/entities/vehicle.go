package entities

type VehicleFilter struct {
	Status   string
	Category string
	Location string
	Search   string
}

type VehicleResponse struct {
	ID        string   `json:"id"`
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	DailyRate int      `json:"daily_rate"`
	Status    string   `json:"status"`
	Category  string   `json:"category"`
	Location  string   `json:"location"`
	Features  []string `json:"features,omitempty"`
	Images    []string `json:"images,omitempty"`
}
