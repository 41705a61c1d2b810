package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. SeqNo is the clinic-local
// sequential number shown to front desk staff; ID is the global key.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ClinicID  uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	SeqNo     int        `db:"seq_no" json:"seq_no"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`

	// ContactMethods is the set of channels the patient consented to
	// ("email", "sms", "phone"). Reminders only go out on these.
	ContactMethods []string `db:"contact_methods" json:"contact_methods"`

	MedicalHistory *string  `db:"medical_history" json:"medical_history,omitempty"`
	GuardianName   *string  `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianPhone  *string  `db:"guardian_phone" json:"guardian_phone,omitempty"`
	Documents      []string `db:"documents" json:"documents"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and notifications.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CanReceive reports whether the patient allows the given channel.
func (p *Patient) CanReceive(method string) bool {
	for _, m := range p.ContactMethods {
		if m == method {
			return true
		}
	}
	return false
}
