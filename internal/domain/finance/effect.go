package finance

import "github.com/shopspring/decimal"

// EffectTable maps each document kind to the sign of its balance contribution
// while active: -1 decreases the party balance, +1 increases it, 0 means the
// kind does not touch party balances.
type EffectTable map[DocumentKind]int

// DefaultEffectTable returns the production sign table.
//
// A purchase increases what we owe the supplier and is carried as a negative
// balance; a purchase return is owed back to us. Expenses are a no-op until
// their party semantics are confirmed.
func DefaultEffectTable() EffectTable {
	return EffectTable{
		DocumentKindPurchase:       -1,
		DocumentKindPurchaseReturn: 1,
		DocumentKindExpense:        0,
	}
}

// WithSign returns a copy of the table with the sign of one kind replaced
func (t EffectTable) WithSign(kind DocumentKind, sign int) EffectTable {
	c := make(EffectTable, len(t)+1)
	for k, v := range t {
		c[k] = v
	}
	switch {
	case sign > 0:
		c[kind] = 1
	case sign < 0:
		c[kind] = -1
	default:
		c[kind] = 0
	}
	return c
}

// Of returns the signed contribution of a document with the given kind,
// status and amount. Drafts and unknown kinds contribute zero.
func (t EffectTable) Of(kind DocumentKind, status DocumentStatus, amount decimal.Decimal) decimal.Decimal {
	if status != DocumentStatusActive {
		return decimal.Zero
	}
	switch t[kind] {
	case 1:
		return amount
	case -1:
		return amount.Neg()
	}
	return decimal.Zero
}

// Effect returns the signed contribution of the document in its current status
func (t EffectTable) Effect(doc FinancialDocument) decimal.Decimal {
	return t.Of(doc.Kind, doc.Status, doc.Amount)
}

// Transition returns the delta produced by moving a document between statuses
func (t EffectTable) Transition(doc FinancialDocument, from, to DocumentStatus) decimal.Decimal {
	before := t.Effect(doc.WithStatus(from))
	after := t.Effect(doc.WithStatus(to))
	return after.Sub(before)
}

// Sum returns the total effect of a set of documents
func (t EffectTable) Sum(docs []FinancialDocument) decimal.Decimal {
	total := decimal.Zero
	for _, d := range docs {
		total = total.Add(t.Effect(d))
	}
	return total
}
