// Package ofx reads OFX/QFX bank and credit card statements and turns their
// debits into statement entries ready for import.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spent/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket in SGML-style files.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Merchant prefixes banks put in front of the payee name.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	// Concurrency bounds ParseFiles; zero means one goroutine per file.
	Concurrency int
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{Concurrency: 4}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses one statement and returns its debits in statement order.
// Credits are dropped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.StatementEntry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		entries            []model.StatementEntry
		credits            int
		bankStmts, ccStmts int
	)
	collect := func(list *ofxgo.TransactionList, account string) {
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			entry, ok, err := p.convertTransaction(ofxTx, account)
			if err != nil {
				slog.Warn("skipping unreadable transaction", "account", account, "fitid", string(ofxTx.FiTID), "error", err)
				continue
			}
			if !ok {
				credits++
				continue
			}
			entries = append(entries, entry)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			collect(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			collect(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
		}
	}

	slog.Info("parsed OFX file",
		"debits", len(entries),
		"credits_skipped", credits,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

// ParseFiles parses several statement files concurrently. Entries appearing in
// more than one file (overlapping download windows) are kept once. The result
// is ordered by date, then by file order.
func (p *Parser) ParseFiles(ctx context.Context, paths []string) ([]model.StatementEntry, error) {
	results := make([][]model.StatementEntry, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if p.Concurrency > 0 {
		g.SetLimit(p.Concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			entries, err := p.ParseFile(ctx, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var merged []model.StatementEntry
	duplicates := 0
	for _, entries := range results {
		for _, e := range entries {
			key := e.DedupKey()
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, e)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	if duplicates > 0 {
		slog.Info("dropped duplicate statement entries", "count", duplicates)
	}
	return merged, nil
}

// convertTransaction turns a debit into a statement entry. ok is false for
// credits and zero amounts.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account string) (model.StatementEntry, bool, error) {
	// OFX uses negative amounts for debits
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(model.MoneyScale))
	if err != nil {
		return model.StatementEntry{}, false, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsNegative() {
		return model.StatementEntry{}, false, nil
	}

	description := p.extractMerchantName(ofxTx)
	if ofxTx.CheckNum != "" && description == "" {
		description = "Check #" + string(ofxTx.CheckNum)
	}

	return model.StatementEntry{
		FITID:       string(ofxTx.FiTID),
		Date:        model.DateOf(ofxTx.DtPosted.Time),
		Description: description,
		Account:     account,
		Amount:      model.MoneyFromDecimal(amount.Abs()),
	}, true, nil
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// MEMO sometimes has better merchant info
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
