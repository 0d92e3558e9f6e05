package dto

// ContactRequest is the public lead form. Website is a honeypot and must stay empty.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Company string `json:"company" validate:"omitempty,max=120"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
	Website string `json:"website"`
}

// ContactIssue is one failed field check.
type ContactIssue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ContactResponse is the body of every contact endpoint response.
type ContactResponse struct {
	OK     bool           `json:"ok"`
	Error  string         `json:"error,omitempty"`
	Issues []ContactIssue `json:"issues,omitempty"`
}
