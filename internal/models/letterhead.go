package models

// Letterhead stores the cooperative details printed on reports.
// There should be only one row.
type Letterhead struct {
	BaseModel
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	FooterNote  string `json:"footer_note"`
}
