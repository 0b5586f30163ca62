package store

import (
	"database/sql"
	"strings"
	"time"

	bank "github.com/satbank/satbank/pkg"

	_ "github.com/mattn/go-sqlite3"
)

var SETUP_SQL string = `
CREATE TABLE IF NOT EXISTS account (
	id TEXT NOT NULL PRIMARY KEY,
	foreign_id TEXT NOT NULL UNIQUE,
	level INTEGER NOT NULL DEFAULT 0,
	created INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS account_address (
	address TEXT NOT NULL PRIMARY KEY,
	account_id TEXT NOT NULL,
	seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS account_address_i ON account_address (account_id, seq);

CREATE TABLE IF NOT EXISTS ledger_entry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	memo TEXT NOT NULL DEFAULT '',
	created INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_leg (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id INTEGER NOT NULL REFERENCES ledger_entry(id),
	account_path TEXT NOT NULL,
	amount INTEGER NOT NULL,
	debit INTEGER NOT NULL,
	currency TEXT NOT NULL,
	entry_type TEXT NOT NULL,
	txid TEXT NOT NULL DEFAULT '',
	pending INTEGER NOT NULL,
	fee INTEGER NOT NULL DEFAULT 0,
	fiat TEXT NOT NULL DEFAULT '0',
	fiat_fee TEXT NOT NULL DEFAULT '0',
	payee_addresses TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ledger_leg_account_i ON ledger_leg (account_path, entry_type, txid);
`

// interface guards ensure SQLiteStore implements both contracts
var _ bank.Store = SQLiteStore{}
var _ bank.Ledger = SQLiteStore{}

// SQLiteStore persists accounts, the address ownership index and the
// double-entry ledger. Ledger commits are one SQL transaction: all
// legs or none, with the balanced-entry invariant checked before any
// row is written.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a store backed by sqlite at fileName
// (":memory:" for tests).
func NewSQLiteStore(fileName string) (SQLiteStore, error) {
	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return SQLiteStore{}, dbErr(err, "opening database")
	}
	// sqlite is single-writer; avoid "database is locked" errors
	// under concurrent operations.
	db.SetMaxOpenConns(1)
	_, err = db.Exec(SETUP_SQL)
	if err != nil {
		return SQLiteStore{}, dbErr(err, "creating tables")
	}
	return SQLiteStore{db}, nil
}

// Defer this until shutdown
func (s SQLiteStore) Close() {
	s.db.Close()
}

func (s SQLiteStore) CreateAccount(acc bank.Account) error {
	created := acc.Created
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO account (id, foreign_id, level, created) VALUES (?,?,?,?)",
		acc.ID, acc.ForeignID, acc.Level, created.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return bank.NewErr(bank.AlreadyExists, "account already exists: %s", acc.ForeignID)
		}
		return dbErr(err, "CreateAccount")
	}
	for i, addr := range acc.Addresses {
		if err := s.appendAddressSeq(acc.ID, addr, i); err != nil {
			return err
		}
	}
	return nil
}

func (s SQLiteStore) GetAccount(foreignID string) (bank.Account, error) {
	row := s.db.QueryRow(
		"SELECT id, foreign_id, level, created FROM account WHERE foreign_id = ?", foreignID)
	return s.scanAccount(row, foreignID)
}

func (s SQLiteStore) GetAccountByID(id string) (bank.Account, error) {
	row := s.db.QueryRow(
		"SELECT id, foreign_id, level, created FROM account WHERE id = ?", id)
	return s.scanAccount(row, id)
}

func (s SQLiteStore) FindAccountByAddress(addr bank.Address) (bank.Account, error) {
	row := s.db.QueryRow(
		`SELECT a.id, a.foreign_id, a.level, a.created FROM account a
		 JOIN account_address x ON x.account_id = a.id
		 WHERE x.address = ?`, addr)
	return s.scanAccount(row, string(addr))
}

func (s SQLiteStore) scanAccount(row *sql.Row, key string) (bank.Account, error) {
	var acc bank.Account
	var created int64
	err := row.Scan(&acc.ID, &acc.ForeignID, &acc.Level, &created)
	if err == sql.ErrNoRows {
		return bank.Account{}, bank.NewErr(bank.NotFound, "account not found: %s", key)
	}
	if err != nil {
		return bank.Account{}, dbErr(err, "scanning account")
	}
	acc.Created = time.Unix(created, 0)
	rows, err := s.db.Query(
		"SELECT address FROM account_address WHERE account_id = ? ORDER BY seq", acc.ID)
	if err != nil {
		return bank.Account{}, dbErr(err, "loading addresses")
	}
	defer rows.Close()
	for rows.Next() {
		var addr bank.Address
		if err := rows.Scan(&addr); err != nil {
			return bank.Account{}, dbErr(err, "scanning address")
		}
		acc.Addresses = append(acc.Addresses, addr)
	}
	return acc, rows.Err()
}

func (s SQLiteStore) AppendAddress(accountID string, addr bank.Address) error {
	return s.appendAddressSeq(accountID, addr,
		int(time.Now().UnixNano())) // seq only needs to be increasing per account
}

func (s SQLiteStore) appendAddressSeq(accountID string, addr bank.Address, seq int) error {
	_, err := s.db.Exec(
		"INSERT INTO account_address (address, account_id, seq) VALUES (?,?,?)",
		addr, accountID, seq)
	if err != nil {
		if isUniqueViolation(err) {
			// an address belongs to exactly one account, forever
			return bank.NewErr(bank.AlreadyExists, "address already bound: %s", addr)
		}
		return dbErr(err, "AppendAddress")
	}
	return nil
}

func (s SQLiteStore) ListAccountIDs(cursor int, limit int) (ids []string, next_cursor int, err error) {
	rows, err := s.db.Query(
		"SELECT rowid, id FROM account WHERE rowid > ? ORDER BY rowid LIMIT ?", cursor, limit)
	if err != nil {
		return nil, 0, dbErr(err, "ListAccountIDs")
	}
	defer rows.Close()
	for rows.Next() {
		var rowid int
		var id string
		if err := rows.Scan(&rowid, &id); err != nil {
			return nil, 0, dbErr(err, "scanning account id")
		}
		ids = append(ids, id)
		next_cursor = rowid
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbErr(err, "ListAccountIDs")
	}
	if len(ids) < limit {
		next_cursor = 0 // final page
	}
	return ids, next_cursor, nil
}

// --- bank.Ledger ---

func (s SQLiteStore) Balance(accountPath string) (bank.Amount, error) {
	row := s.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN debit THEN -amount ELSE amount END), 0)
		 FROM ledger_leg WHERE account_path = ?`, accountPath)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, dbErr(err, "Balance")
	}
	return bank.Amount(balance), nil
}

func (s SQLiteStore) FindEntry(accountPath string, entryType string, txid string) (bool, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*) FROM ledger_leg
		 WHERE account_path = ? AND entry_type = ? AND txid = ?`,
		accountPath, entryType, txid)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, dbErr(err, "FindEntry")
	}
	return count > 0, nil
}

// Commit posts all legs of the entry in one SQL transaction.
func (s SQLiteStore) Commit(e *bank.Entry) error {
	if !e.Balanced() {
		return bank.NewErr(bank.BadRequest, "unbalanced ledger entry: %+v", e)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return dbErr(err, "Commit: begin")
	}
	defer tx.Rollback()

	created := e.Created
	if created.IsZero() {
		created = time.Now()
	}
	res, err := tx.Exec(
		"INSERT INTO ledger_entry (memo, created) VALUES (?,?)", e.Memo, created.Unix())
	if err != nil {
		return dbErr(err, "Commit: entry")
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return dbErr(err, "Commit: entry id")
	}
	stmt, err := tx.Prepare(
		`INSERT INTO ledger_leg
		 (entry_id, account_path, amount, debit, currency, entry_type, txid, pending, fee, fiat, fiat_fee, payee_addresses)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return dbErr(err, "Commit: prepare")
	}
	defer stmt.Close()
	for _, leg := range e.Legs {
		_, err = stmt.Exec(entryID, leg.AccountPath, int64(leg.Amount), leg.Debit,
			leg.Meta.Currency, leg.Meta.Type, leg.Meta.TxID, leg.Meta.Pending,
			int64(leg.Meta.Fee), leg.Meta.Fiat.String(), leg.Meta.FiatFee.String(),
			joinAddresses(leg.Meta.PayeeAddresses))
		if err != nil {
			return dbErr(err, "Commit: leg")
		}
	}
	if err = tx.Commit(); err != nil {
		return dbErr(err, "Commit")
	}
	return nil
}

func (s SQLiteStore) SumDebitsSince(accountPath string, entryTypes []string, since time.Time) (bank.Amount, error) {
	if len(entryTypes) == 0 {
		return 0, nil
	}
	args := []any{accountPath, since.Unix()}
	marks := make([]string, len(entryTypes))
	for i, t := range entryTypes {
		marks[i] = "?"
		args = append(args, t)
	}
	row := s.db.QueryRow(
		`SELECT COALESCE(SUM(l.amount), 0) FROM ledger_leg l
		 JOIN ledger_entry e ON e.id = l.entry_id
		 WHERE l.account_path = ? AND l.debit AND e.created >= ?
		 AND l.entry_type IN (`+strings.Join(marks, ",")+`)`, args...)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, dbErr(err, "SumDebitsSince")
	}
	return bank.Amount(total), nil
}

func (s SQLiteStore) ListEntries(accountPath string, cursor int, limit int) (items []bank.EntryRecord, next_cursor int, err error) {
	rows, err := s.db.Query(
		`SELECT l.id, e.created, e.memo, l.entry_type, l.txid, l.pending, l.fee, l.amount, l.debit, l.currency
		 FROM ledger_leg l JOIN ledger_entry e ON e.id = l.entry_id
		 WHERE l.account_path = ? AND (? = 0 OR l.id < ?)
		 ORDER BY l.id DESC LIMIT ?`,
		accountPath, cursor, cursor, limit)
	if err != nil {
		return nil, 0, dbErr(err, "ListEntries")
	}
	defer rows.Close()
	for rows.Next() {
		var rec bank.EntryRecord
		var legID int
		var created, fee, amount int64
		var debit bool
		if err := rows.Scan(&legID, &created, &rec.Memo, &rec.Type, &rec.TxID,
			&rec.Pending, &fee, &amount, &debit, &rec.Currency); err != nil {
			return nil, 0, dbErr(err, "scanning entry")
		}
		rec.Created = time.Unix(created, 0)
		rec.Fee = bank.Amount(fee)
		rec.Amount = bank.Amount(amount)
		if debit {
			rec.Amount = -rec.Amount
		}
		items = append(items, rec)
		next_cursor = legID
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dbErr(err, "ListEntries")
	}
	if len(items) < limit {
		next_cursor = 0 // final page
	}
	return items, next_cursor, nil
}

func joinAddresses(addrs []bank.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func dbErr(err error, where string) error {
	return bank.NewErr(bank.DBConflict, "database error: %s: %v", where, err)
}
