package patients

import (
	"github.com/medisched/medisched/internal/accounts"
)

// Patient is a patient account with contact and demographic details.
type Patient struct {
	ID int64 `json:"id"`
	accounts.Account
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	BloodGroup     string `json:"bloodGroup,omitempty"`
	Age            int    `json:"age,omitempty"`
	Gender         string `json:"gender,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	DocumentsFile  string `json:"documentsFile,omitempty"`
}
