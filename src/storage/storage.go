package storage

import (
	"context"
	"database/sql"
	"fmt"
	stdlog "log"

	"github.com/shopspring/decimal"

	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the schema. Decimal columns
// are stored as TEXT to keep exact values; REAL would corrupt paise amounts.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}
	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database schema for:", databasePath)
	}
	migrateHoldingsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id TEXT NOT NULL,
		scheme_name TEXT NOT NULL,
		plan_type TEXT,
		option_type TEXT,
		isin TEXT NOT NULL,
		folio TEXT NOT NULL DEFAULT '',
		units TEXT,
		nav TEXT,
		current_value TEXT,
		invested_amount TEXT,
		unrealised_gain TEXT,
		annualised_return TEXT,
		holding_kind TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(isin, folio)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		units TEXT,
		unit_price TEXT,
		description TEXT,
		scheme_name_hint TEXT,
		isin_hint TEXT,
		hash_id TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err = DB.Exec(createTableStatement); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateHoldingsTable backfills columns added after the first release onto
// databases created by older builds.
func migrateHoldingsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='holdings'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'holdings' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'holdings' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(holdings)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'holdings'", "error", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk, notnullVal int
		var name, dataType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'holdings'", "error", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'holdings'", "error", err)
		}
		return
	}

	for col, ddl := range map[string]string{
		"plan_type":         "ALTER TABLE holdings ADD COLUMN plan_type TEXT",
		"option_type":       "ALTER TABLE holdings ADD COLUMN option_type TEXT",
		"annualised_return": "ALTER TABLE holdings ADD COLUMN annualised_return TEXT",
	} {
		if columnExists[col] {
			continue
		}
		if _, err := DB.Exec(ddl); err != nil {
			logger.L.Error("Error adding column to 'holdings' table", "column", col, "error", err)
		} else {
			logger.L.Info("Added column to 'holdings' table", "column", col)
		}
	}
}

// SaveParseResult persists a parse result idempotently. Holdings upsert on
// (isin, folio) so re-importing a newer statement refreshes the snapshot;
// transactions insert-or-ignore on their content hash so the same event in
// overlapping statement periods lands once.
func SaveParseResult(ctx context.Context, res *models.ParseResult) error {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	holdingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO holdings (
			import_id, scheme_name, plan_type, option_type, isin, folio,
			units, nav, current_value, invested_amount, unrealised_gain,
			annualised_return, holding_kind, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(isin, folio) DO UPDATE SET
			import_id = excluded.import_id,
			scheme_name = excluded.scheme_name,
			plan_type = excluded.plan_type,
			option_type = excluded.option_type,
			units = excluded.units,
			nav = excluded.nav,
			current_value = excluded.current_value,
			invested_amount = excluded.invested_amount,
			unrealised_gain = excluded.unrealised_gain,
			annualised_return = excluded.annualised_return,
			holding_kind = excluded.holding_kind,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare holding upsert: %w", err)
	}
	defer holdingStmt.Close()

	for _, h := range res.Holdings {
		_, err := holdingStmt.ExecContext(ctx,
			res.Diagnostics.ImportID, h.SchemeName, string(h.PlanType), string(h.OptionType),
			h.ISIN, h.Folio,
			decString(h.Units), decString(h.NAV), decString(h.CurrentValue),
			decString(h.InvestedAmount), decString(h.UnrealisedGain), decString(h.AnnualisedReturn),
			string(h.Kind))
		if err != nil {
			return fmt.Errorf("failed to upsert holding %s/%s: %w", h.ISIN, h.Folio, err)
		}
	}

	txStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			import_id, date, kind, amount, units, unit_price,
			description, scheme_name_hint, isin_hint, hash_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer txStmt.Close()

	for _, t := range res.Transactions {
		_, err := txStmt.ExecContext(ctx,
			res.Diagnostics.ImportID, t.Date.Format("2006-01-02"), string(t.Kind),
			t.Amount.String(), decString(t.Units), decString(t.UnitPrice),
			t.Description, t.SchemeNameHint, t.ISINHint, t.HashID())
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit parse result: %w", err)
	}
	logger.L.Info("Parse result persisted",
		"importID", res.Diagnostics.ImportID,
		"holdings", len(res.Holdings), "transactions", len(res.Transactions))
	return nil
}

// CountHoldings returns the number of persisted holdings, used by the CLI
// summary after an import.
func CountHoldings(ctx context.Context) (int, error) {
	var n int
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM holdings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return n, nil
}

func decString(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
