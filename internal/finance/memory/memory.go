package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"finalerts/internal/core"
	"finalerts/internal/finance"
)

var _ finance.Provider = (*Store)(nil)

// Store is an in-memory provider. Budgets with a zero month apply to every
// month they are requested for.
type Store struct {
	mu      sync.Mutex
	budgets []core.Budget
	txs     []core.Transaction
	// explicit spent amounts from the seed, keyed by budget id
	spent map[int64]core.Money
}

func New(budgets []core.Budget, txs []core.Transaction) *Store {
	return &Store{
		budgets: append([]core.Budget(nil), budgets...),
		txs:     append([]core.Transaction(nil), txs...),
		spent:   map[int64]core.Money{},
	}
}

type seedFile struct {
	Budgets      []seedBudget      `yaml:"budgets"`
	Transactions []seedTransaction `yaml:"transactions"`
}

type seedBudget struct {
	ID             int64  `yaml:"id"`
	Category       string `yaml:"category"`
	Amount         string `yaml:"amount"`
	Spent          string `yaml:"spent"`
	AlertThreshold *int   `yaml:"alert_threshold"`
	Month          int    `yaml:"month"`
	Year           int    `yaml:"year"`
}

type seedTransaction struct {
	ID          int64  `yaml:"id"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
	Date        string `yaml:"date"`
	Recurring   bool   `yaml:"recurring"`
	Frequency   string `yaml:"frequency"`
	NextDueDate string `yaml:"next_due_date"`
}

// NewFromFile loads a YAML seed. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML seed. Amounts are kept as written, even when zero, so
// that malformed budgets reach the synthesizer and are reported there.
func Load(r io.Reader) (*Store, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	s := New(nil, nil)
	for i, b := range seed.Budgets {
		amount, err := parseAmount(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("budget %d (entry %d): amount: %w", b.ID, i, err)
		}
		s.budgets = append(s.budgets, core.Budget{
			ID:             b.ID,
			Category:       strings.TrimSpace(b.Category),
			Amount:         amount,
			AlertThreshold: b.AlertThreshold,
			Month:          b.Month,
			Year:           b.Year,
		})
		if strings.TrimSpace(b.Spent) != "" {
			spent, err := parseAmount(b.Spent)
			if err != nil {
				return nil, fmt.Errorf("budget %d (entry %d): spent: %w", b.ID, i, err)
			}
			s.spent[b.ID] = spent
		}
	}

	for i, st := range seed.Transactions {
		t, err := st.toCore()
		if err != nil {
			return nil, fmt.Errorf("transaction %d (entry %d): %w", st.ID, i, err)
		}
		s.txs = append(s.txs, t)
	}
	return s, nil
}

func (st seedTransaction) toCore() (core.Transaction, error) {
	amount, err := parseAmount(st.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	date, err := core.ParseDate(st.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          st.ID,
		Type:        core.TransactionType(strings.ToUpper(strings.TrimSpace(st.Type))),
		Category:    strings.TrimSpace(st.Category),
		Description: st.Description,
		Amount:      amount,
		Date:        date,
		Recurring:   st.Recurring,
	}
	if st.Recurring {
		if t.Every, err = core.ParseRepetition(st.Frequency); err != nil {
			return core.Transaction{}, err
		}
		if t.NextDueDate, err = core.ParseDate(st.NextDueDate); err != nil {
			return core.Transaction{}, err
		}
	}
	return t, nil
}

func parseAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Money{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return core.MoneyFromDecimal(d), nil
}

// AddBudget stores a budget.
func (s *Store) AddBudget(b core.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, b)
}

// AddTransaction validates and stores a transaction.
func (s *Store) AddTransaction(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, t)
	return nil
}

// ListBudgets returns the budgets of the month with spent derived from the
// month's expenses, unless the seed fixed it.
func (s *Store) ListBudgets(_ context.Context, year int, month int) ([]core.Budget, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.Month == 0 {
			b.Month, b.Year = month, year
		}
		if b.Year == 0 {
			b.Year = year
		}
		if b.Month != month || b.Year != year {
			continue
		}
		out = append(out, b)
	}
	out = core.ApplySpent(out, s.txs)
	for i := range out {
		if spent, ok := s.spent[out[i].ID]; ok {
			out[i].Spent = spent
		}
	}
	return out, nil
}

// GetMonthlySummary folds the stored transactions of the month.
func (s *Store) GetMonthlySummary(_ context.Context, year int, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(year, month, s.txs), nil
}

// ListUpcomingRecurring returns recurring expenses due within the window.
func (s *Store) ListUpcomingRecurring(_ context.Context, from core.Date, days int) ([]core.UpcomingBill, error) {
	if days < 0 {
		return nil, fmt.Errorf("invalid window: %d days", days)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.UpcomingBills(s.txs, from, days), nil
}
