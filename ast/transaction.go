package ast

// Transaction records a financial transaction with a date, flag, optional payee,
// narration, and an ordered list of postings. The flag indicates transaction status:
// '*' for cleared transactions and '!' for pending ones. The sum of all posting weights
// must balance to zero in every currency (double-entry bookkeeping). At most one
// posting may leave its units out; the ledger infers them from the other legs.
//
// Example:
//
//	2014-05-05 * "Cafe Mogador" "Lamb tagine with wine"
//	  Liabilities:CreditCard:CapitalOne         -37.45 USD
//	  Expenses:Food:Restaurant
type Transaction struct {
	Pos       Position
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag

	withMetadata

	Postings []*Posting
}

// Clone returns a shallow copy of the transaction with its own postings slice.
// Postings themselves are shared; they are treated as immutable values.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Postings = make([]*Posting, len(t.Postings))
	copy(c.Postings, t.Postings)
	return &c
}

// WithPostings returns a copy of the transaction carrying the given postings.
// The receiver is left untouched.
func (t *Transaction) WithPostings(postings []*Posting) *Transaction {
	c := *t
	c.Postings = postings
	return &c
}

// Accounts returns the distinct accounts referenced by the postings, in order.
func (t *Transaction) Accounts() []Account {
	accounts := make([]Account, 0, len(t.Postings))
	seen := make(map[Account]bool, len(t.Postings))
	for _, posting := range t.Postings {
		if !seen[posting.Account] {
			accounts = append(accounts, posting.Account)
			seen[posting.Account] = true
		}
	}
	return accounts
}

// Posting represents a single leg of a transaction, specifying an account, its units
// and an optional cost or price. Cost specifications track the acquisition cost of
// commodities; price specifications record the conversion rate.
//
// Example postings within transactions:
//
//	Assets:Investments:Brokerage    10 HOOL {518.73 USD}  ; Purchase with cost
//	Assets:Investments:Cash        200 EUR @ 1.35 USD     ; Conversion with price
//	Expenses:Groceries              45.60 USD             ; Simple posting
//	Assets:Checking                                       ; Inferred units
type Posting struct {
	Pos      Position
	Flag     string
	Account  Account
	Units    Units
	Cost     *Cost
	Price    *Amount
	Inferred bool // True if Units were filled in by the ledger (not parsed)

	withMetadata
}

// Explicit returns the posting's units when both number and currency are known.
func (p *Posting) Explicit() (ExplicitUnits, bool) {
	u, ok := p.Units.(ExplicitUnits)
	return u, ok
}

// IsIncomplete returns true when the number or the currency is missing.
func (p *Posting) IsIncomplete() bool {
	_, ok := p.Explicit()
	return !ok
}

// IsAuto returns true for the canonical auto-posting: no units, no cost, no price.
func (p *Posting) IsAuto() bool {
	if p.Cost != nil || p.Price != nil {
		return false
	}
	switch u := p.Units.(type) {
	case nil:
		return true
	case IncompleteUnits:
		return u.IsAuto()
	}
	return false
}
