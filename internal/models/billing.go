package models

import (
	"strings"
	"time"
)

type KinesiologyOrder struct {
	ID           int64     `json:"id"`
	PatientID    int64     `json:"pacienteId"`
	Number       int       `json:"numero"`
	SessionCount int       `json:"cantidadSesiones"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// KinesiologyOrderProgress is an order together with its linked appointments.
type KinesiologyOrderProgress struct {
	KinesiologyOrder
	Consumed     int           `json:"consumidas"`
	Pending      int           `json:"pendientes"`
	Appointments []Appointment `json:"turnos"`
}

func NewKinesiologyOrderProgress(order KinesiologyOrder, appointments []Appointment) KinesiologyOrderProgress {
	consumed := 0
	for _, appointment := range appointments {
		if appointment.Status == StatusCompleted {
			consumed++
		}
	}
	pending := order.SessionCount - consumed
	if pending < 0 {
		pending = 0
	}
	if appointments == nil {
		appointments = []Appointment{}
	}
	return KinesiologyOrderProgress{
		KinesiologyOrder: order,
		Consumed:         consumed,
		Pending:          pending,
		Appointments:     appointments,
	}
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCredit   PaymentMethod = "credit"
	PaymentOther    PaymentMethod = "other"
)

func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cash", "efectivo":
		return PaymentCash, true
	case "transfer", "transferencia":
		return PaymentTransfer, true
	case "debit", "debito", "débito":
		return PaymentDebit, true
	case "credit", "credito", "crédito":
		return PaymentCredit, true
	case "other", "otro":
		return PaymentOther, true
	default:
		return "", false
	}
}

type GymMonthlyPayment struct {
	ID            int64           `json:"id"`
	PatientID     int64           `json:"pacienteId"`
	YearMonth     string          `json:"yearMonth"`
	Amount        int             `json:"importe"`
	Paid          bool            `json:"cobrado"`
	PaidAt        *time.Time      `json:"cobradoAt"`
	PaidBy        *int64          `json:"cobradoPorId"`
	PaymentMethod *PaymentMethod  `json:"formaPago"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Patient       *PatientSummary `json:"paciente,omitempty"`
}

const CopaymentConfigID = "default"

type CopaymentConfig struct {
	ID        string    `json:"id"`
	Tier1     int       `json:"coseguro1"`
	Tier2     int       `json:"coseguro2"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Amount returns the configured amount for tier; unknown tiers cost nothing.
func (c *CopaymentConfig) Amount(tier CopaymentTier) int {
	if c == nil {
		return 0
	}
	switch tier {
	case CopaymentTier1:
		return c.Tier1
	case CopaymentTier2:
		return c.Tier2
	default:
		return 0
	}
}
