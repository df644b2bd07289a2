package core

import "time"

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindGoal    Kind = "goal"
)

type (
	// Kind names one of the three record collections.
	Kind string

	Income struct {
		ID         string    `json:"id"`
		OwnerID    string    `json:"ownerId"`
		Source     string    `json:"source"`
		Amount     float64   `json:"amount"`
		RecordedAt time.Time `json:"recordedAt"`
	}

	Expense struct {
		ID         string    `json:"id"`
		OwnerID    string    `json:"ownerId"`
		Title      string    `json:"title"`
		Amount     float64   `json:"amount"`
		Category   *string   `json:"category"` // null when not supplied
		RecordedAt time.Time `json:"recordedAt"`
	}

	Goal struct {
		ID           string    `json:"id"`
		OwnerID      string    `json:"ownerId"`
		GoalName     string    `json:"goalName"`
		TargetAmount float64   `json:"targetAmount"`
		Years        float64   `json:"years"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

// Record is satisfied by every storable record value. Stamped returns a copy
// carrying the server-assigned id and creation time.
type Record[T any] interface {
	Kind() Kind
	Owner() string
	Identity() string
	Stamped(id string, at time.Time) T
}

var (
	_ Record[Income]  = Income{}
	_ Record[Expense] = Expense{}
	_ Record[Goal]    = Goal{}
)

// Kinds returns all record kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense, KindGoal}
}

// IsValid reports whether k is a known record kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindGoal:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

func (Income) Kind() Kind          { return KindIncome }
func (i Income) Owner() string     { return i.OwnerID }
func (i Income) Identity() string  { return i.ID }
func (Expense) Kind() Kind         { return KindExpense }
func (e Expense) Owner() string    { return e.OwnerID }
func (e Expense) Identity() string { return e.ID }
func (Goal) Kind() Kind            { return KindGoal }
func (g Goal) Owner() string       { return g.OwnerID }
func (g Goal) Identity() string    { return g.ID }

func (i Income) Stamped(id string, at time.Time) Income {
	i.ID = id
	i.RecordedAt = at
	return i
}

func (e Expense) Stamped(id string, at time.Time) Expense {
	e.ID = id
	e.RecordedAt = at
	return e
}

func (g Goal) Stamped(id string, at time.Time) Goal {
	g.ID = id
	g.CreatedAt = at
	return g
}
