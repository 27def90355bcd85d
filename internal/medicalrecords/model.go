package medicalrecords

import "time"

// MedicalRecord captures a diagnosis for a patient visit. Created directly
// by a doctor or as a side effect of completing an appointment.
type MedicalRecord struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"patientId"`
	PatientName  string    `json:"patientName,omitempty"`
	DoctorID     string    `json:"doctorId"`
	DoctorName   string    `json:"doctorName,omitempty"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	RecordDate   string    `json:"recordDate"` // YYYY-MM-DD
	FollowUpDate string    `json:"followUpDate,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
