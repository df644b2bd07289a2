package core

// ValidateIncome turns a decoded JSON object into an unsaved Income. The id and
// recordedAt are left zero; the repository assigns them on create.
func ValidateIncome(raw map[string]any) (Income, error) {
	v, err := IncomeSchema.Check(raw)
	if err != nil {
		return Income{}, err
	}
	return Income{
		OwnerID: v.Text(FieldOwnerID),
		Source:  v.Text("source"),
		Amount:  v.Number(FieldAmount),
	}, nil
}

func ValidateExpense(raw map[string]any) (Expense, error) {
	v, err := ExpenseSchema.Check(raw)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		OwnerID:  v.Text(FieldOwnerID),
		Title:    v.Text("title"),
		Amount:   v.Number(FieldAmount),
		Category: v.OptionalText("category"),
	}, nil
}

func ValidateGoal(raw map[string]any) (Goal, error) {
	v, err := GoalSchema.Check(raw)
	if err != nil {
		return Goal{}, err
	}
	return Goal{
		OwnerID:      v.Text(FieldOwnerID),
		GoalName:     v.Text("goalName"),
		TargetAmount: v.Number("targetAmount"),
		Years:        v.Number("years"),
	}, nil
}
