// Package accounttree groups flat account rows into a
// user → CSP account → trading account hierarchy.
package accounttree

import (
	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
)

// ConflictPolicy decides what happens when rows disagree on a shared field
type ConflictPolicy int

const (
	// FirstWins keeps the value from the first row seen
	FirstWins ConflictPolicy = iota
	// LastWins overwrites with the value from the latest row
	LastWins
	// Reject skips the disagreeing row entirely
	Reject
)

// Row is one flat input record
type Row struct {
	UserID             string
	UserName           string
	CSPAccountID       string
	CSPAccountName     string
	TradingAccountID   string
	TradingAccountName string
	Balance            float64
	ConnectionStatus   string
	IsLive             bool
}

// TradingAccount is a leaf of the tree
type TradingAccount struct {
	ID               string  `json:"id"`
	Name             string  `json:"name,omitempty"`
	Balance          float64 `json:"balance"`
	ConnectionStatus string  `json:"connection_status,omitempty"`
	IsLive           bool    `json:"is_live"`
}

// CSPAccount groups the trading accounts held at one broker account
type CSPAccount struct {
	ID              string           `json:"id"`
	Name            string           `json:"name,omitempty"`
	UserID          string           `json:"user_id"`
	TradingAccounts []TradingAccount `json:"trading_accounts"`
}

// UserNode groups the CSP accounts of one user
type UserNode struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	CSPAccounts []*CSPAccount `json:"csp_accounts"`
}

// Totals are aggregate counts over the whole tree
type Totals struct {
	Users           int `json:"users"`
	CSPAccounts     int `json:"csp_accounts"`
	TradingAccounts int `json:"trading_accounts"`
}

// Skipped describes an input row that was left out
type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Conflict describes rows that disagree on a shared field
type Conflict struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Field    string `json:"field"`
	Kept     string `json:"kept"`
	Incoming string `json:"incoming"`
}

// Result is the output of Transform
type Result struct {
	Users     []*UserNode `json:"users"`
	Totals    Totals      `json:"totals"`
	Skipped   []Skipped   `json:"skipped,omitempty"`
	Conflicts []Conflict  `json:"conflicts,omitempty"`
}

// Options configures Transform
type Options struct {
	Policy ConflictPolicy
	Log    *logrus.Entry
}

// Skip reasons
const (
	ReasonMissingUser      = "missing user id"
	ReasonMissingCSP       = "missing csp account id"
	ReasonConflictRejected = "conflicting shared field"
	ReasonOwnerConflict    = "csp account owned by another user"
)

type builder struct {
	opts   Options
	log    *logrus.Entry
	users  map[string]*UserNode
	csps   map[string]*CSPAccount
	result Result
}

// Transform groups rows in a single pass. Order of first appearance is kept
// at every level.
func Transform(rows []Row, opts Options) Result {
	b := &builder{
		opts:  opts,
		log:   opts.Log,
		users: make(map[string]*UserNode),
		csps:  make(map[string]*CSPAccount),
		result: Result{
			Users: make([]*UserNode, 0),
		},
	}
	if b.log == nil {
		b.log = logrus.NewEntry(logrus.StandardLogger())
	}
	b.log = b.log.WithField("component", "accounttree")

	for i, row := range rows {
		b.add(i, row)
	}

	b.result.Totals.Users = len(b.result.Users)
	b.result.Totals.CSPAccounts = len(b.csps)
	return b.result
}

func (b *builder) add(i int, row Row) {
	if row.UserID == "" {
		b.skip(i, ReasonMissingUser)
		return
	}
	if row.CSPAccountID == "" {
		b.skip(i, ReasonMissingCSP)
		return
	}

	user, userExists := b.users[row.UserID]
	csp, cspExists := b.csps[row.CSPAccountID]

	// Detect every disagreement before mutating anything so Reject leaves
	// the tree untouched.
	var conflicts []Conflict
	ownerConflict := false
	if userExists && row.UserName != "" && user.Name != "" && user.Name != row.UserName {
		conflicts = append(conflicts, Conflict{Index: i, Key: row.UserID, Field: "user_name", Kept: user.Name, Incoming: row.UserName})
	}
	if cspExists {
		if csp.UserID != row.UserID {
			ownerConflict = true
			conflicts = append(conflicts, Conflict{Index: i, Key: row.CSPAccountID, Field: "owner", Kept: csp.UserID, Incoming: row.UserID})
		}
		if row.CSPAccountName != "" && csp.Name != "" && csp.Name != row.CSPAccountName {
			conflicts = append(conflicts, Conflict{Index: i, Key: row.CSPAccountID, Field: "csp_account_name", Kept: csp.Name, Incoming: row.CSPAccountName})
		}
	}

	for _, c := range conflicts {
		b.log.WithFields(logrus.Fields{
			"row":      c.Index,
			"key":      c.Key,
			"field":    c.Field,
			"kept":     c.Kept,
			"incoming": c.Incoming,
		}).Warn("Account rows disagree on shared field")
	}
	b.result.Conflicts = append(b.result.Conflicts, conflicts...)

	if len(conflicts) > 0 && b.opts.Policy == Reject {
		b.skip(i, ReasonConflictRejected)
		return
	}
	// Under FirstWins the CSP keeps its first owner, and the row's trading
	// account cannot be filed under someone else's CSP.
	if ownerConflict && b.opts.Policy == FirstWins {
		b.skip(i, ReasonOwnerConflict)
		return
	}

	if !userExists {
		user = &UserNode{ID: row.UserID, Name: row.UserName, CSPAccounts: make([]*CSPAccount, 0)}
		b.users[row.UserID] = user
		b.result.Users = append(b.result.Users, user)
	} else if user.Name == "" || (b.opts.Policy == LastWins && row.UserName != "") {
		user.Name = row.UserName
	}

	if !cspExists {
		csp = &CSPAccount{ID: row.CSPAccountID, Name: row.CSPAccountName, UserID: row.UserID, TradingAccounts: make([]TradingAccount, 0)}
		b.csps[row.CSPAccountID] = csp
		user.CSPAccounts = append(user.CSPAccounts, csp)
	} else {
		if csp.Name == "" || (b.opts.Policy == LastWins && row.CSPAccountName != "") {
			csp.Name = row.CSPAccountName
		}
		if csp.UserID != row.UserID && b.opts.Policy == LastWins {
			b.move(csp, row.UserID, user)
		}
	}

	if row.TradingAccountID != "" {
		csp.TradingAccounts = append(csp.TradingAccounts, TradingAccount{
			ID:               row.TradingAccountID,
			Name:             row.TradingAccountName,
			Balance:          row.Balance,
			ConnectionStatus: row.ConnectionStatus,
			IsLive:           row.IsLive,
		})
		b.result.Totals.TradingAccounts++
	}
}

// move re-parents a CSP account to a new owner
func (b *builder) move(csp *CSPAccount, newOwner string, to *UserNode) {
	if from, ok := b.users[csp.UserID]; ok {
		for j, c := range from.CSPAccounts {
			if c == csp {
				from.CSPAccounts = append(from.CSPAccounts[:j], from.CSPAccounts[j+1:]...)
				break
			}
		}
	}
	csp.UserID = newOwner
	to.CSPAccounts = append(to.CSPAccounts, csp)
}

func (b *builder) skip(i int, reason string) {
	b.log.WithFields(logrus.Fields{"row": i, "reason": reason}).Warn("Skipping account row")
	b.result.Skipped = append(b.result.Skipped, Skipped{Index: i, Reason: reason})
}

// FromAccounts converts stored accounts into transform rows
func FromAccounts(accounts []*domain.Account) []Row {
	rows := make([]Row, 0, len(accounts))
	for _, a := range accounts {
		if a == nil {
			continue
		}
		rows = append(rows, Row{
			UserID:             a.UserID,
			UserName:           a.UserName,
			CSPAccountID:       a.CSPAccountID,
			CSPAccountName:     a.CSPAccountName,
			TradingAccountID:   a.TradingAccountID,
			TradingAccountName: a.TradingAccountName,
			Balance:            a.Balance,
			ConnectionStatus:   a.ConnectionStatus,
			IsLive:             a.IsLive,
		})
	}
	return rows
}
