package sqlite

import "database/sql"

// schema mirrors db/migrations for the local store. Amounts are TEXT holding
// canonical decimal strings so balance comparisons are exact.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    auth0_id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL,
    full_name TEXT NOT NULL,
    display_name TEXT,
    member_id TEXT,
    voucher_no TEXT,
    phone TEXT,
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    monthly_contribution TEXT NOT NULL DEFAULT '0',
    pending_fine TEXT NOT NULL DEFAULT '0',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loans (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES profiles(id),
    amount TEXT NOT NULL,
    interest_rate TEXT NOT NULL,
    duration_months INTEGER NOT NULL CHECK (duration_months > 0),
    purpose TEXT,
    status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'active', 'completed')),
    requested_at TEXT NOT NULL,
    approved_at TEXT,
    approved_by TEXT REFERENCES profiles(id),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loan_payments (
    id TEXT PRIMARY KEY,
    loan_id TEXT NOT NULL REFERENCES loans(id),
    user_id TEXT NOT NULL REFERENCES profiles(id),
    month_year TEXT NOT NULL,
    principal_paid TEXT NOT NULL,
    interest_paid TEXT NOT NULL,
    interest_marked_paid INTEGER NOT NULL DEFAULT 0,
    remaining_balance TEXT NOT NULL,
    payment_date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('paid', 'unpaid', 'missed', 'partial')),
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loans_user_id ON loans(user_id);
CREATE INDEX IF NOT EXISTS idx_loan_payments_loan_date ON loan_payments(loan_id, payment_date);
CREATE INDEX IF NOT EXISTS idx_loan_payments_user_id ON loan_payments(user_id);

CREATE VIEW IF NOT EXISTS member_cash_bill_data AS
WITH active AS (
    SELECT user_id,
           SUM(CAST(amount AS REAL)) AS balance,
           SUM(CAST(amount AS REAL) * CAST(interest_rate AS REAL) / 100) AS interest,
           SUM(CAST(amount AS REAL) / duration_months) AS installment,
           SUM((CAST(amount AS REAL) - CAST(amount AS REAL) / duration_months) * CAST(interest_rate AS REAL) / 100) AS installment_interest,
           MAX(duration_months) AS months
    FROM loans
    WHERE status = 'active'
    GROUP BY user_id
)
SELECT p.id AS user_id,
       p.full_name,
       p.display_name AS name,
       p.member_id,
       p.voucher_no,
       NULL AS voucher,
       CAST(p.monthly_contribution AS REAL) AS subscription_income,
       COALESCE(a.balance, 0) AS loan_balance,
       ROUND(COALESCE(a.interest, 0), 2) AS monthly_interest,
       ROUND(COALESCE(a.balance - a.installment, 0), 2) AS updated_principal_balance,
       ROUND(COALESCE(a.installment, 0), 2) AS monthly_installment,
       ROUND(COALESCE(a.installment_interest, 0), 2) AS installment_interest,
       COALESCE(a.months, 0) AS interest_months,
       ROUND(COALESCE(a.balance - a.installment, 0), 2) AS total_loan_balance,
       CAST(p.pending_fine AS REAL) AS fine,
       ROUND(CAST(p.monthly_contribution AS REAL) + COALESCE(a.interest, 0)
             + COALESCE(a.installment, 0) + CAST(p.pending_fine AS REAL), 2) AS total_amount_to_pay
FROM profiles p
LEFT JOIN active a ON a.user_id = p.id;
`

// runMigrations executes the schema setup
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
