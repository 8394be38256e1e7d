package entities

type Email struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

type SendNotification struct {
	Header EventHeader `json:"header"`

	Email Email `json:"email"`
}
