package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/models/reports"
	"github.com/mmdatafocus/retail_backend/utils"
)

// The first posting against an account must chain off the account's
// opening balance, so the statement's opening figure and the first stored
// row agree.
func TestLedgerChainSeedsFromOpeningBalance(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "retail_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	db := config.GetDB()

	company := &models.Company{ID: uuid.NewString(), Name: "Opening Balance Traders"}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	fy := &models.FiscalYear{
		CompanyId: company.ID,
		Name:      "2083/84",
		StartDate: time.Date(2026, 7, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 7, 16, 0, 0, 0, 0, time.UTC),
		IsActive:  utils.NewTrue(),
	}
	if err := db.Create(fy).Error; err != nil {
		t.Fatalf("create fiscal year: %v", err)
	}
	account := &models.Account{
		CompanyId:      company.ID,
		Name:           "Himal Suppliers",
		OpeningBalance: dec("100"),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}

	postingDate := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	first := &models.LedgerTransaction{
		CompanyId:       company.ID,
		FiscalYearId:    fy.ID,
		AccountId:       account.ID,
		ReferenceType:   models.DocumentTypeSalesInvoice,
		ReferenceId:     1,
		DocumentNumber:  "SI-0001",
		Debit:           dec("40"),
		TransactionDate: postingDate,
	}
	if err := models.PostLedgerTransaction(db, first); err != nil {
		t.Fatalf("post first transaction: %v", err)
	}
	if !first.Balance.Equal(dec("140")) {
		t.Fatalf("first balance = %s, want 140 (opening 100 + debit 40)", first.Balance)
	}

	second := &models.LedgerTransaction{
		CompanyId:       company.ID,
		FiscalYearId:    fy.ID,
		AccountId:       account.ID,
		ReferenceType:   models.DocumentTypePurchase,
		ReferenceId:     1,
		DocumentNumber:  "PB-0001",
		Credit:          dec("15"),
		TransactionDate: postingDate.AddDate(0, 0, 1),
	}
	if err := models.PostLedgerTransaction(db, second); err != nil {
		t.Fatalf("post second transaction: %v", err)
	}
	if !second.Balance.Equal(dec("125")) {
		t.Fatalf("second balance = %s, want 125", second.Balance)
	}

	ctx := utils.SetCompanyIdInContext(context.Background(), company.ID)

	stmt, err := reports.GetAccountStatement(ctx, account.ID,
		postingDate.AddDate(0, 0, -1), postingDate.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("account statement: %v", err)
	}
	if !stmt.OpeningBalance.Equal(dec("100")) {
		t.Fatalf("statement opening = %s, want 100", stmt.OpeningBalance)
	}
	if len(stmt.Rows) != 2 {
		t.Fatalf("statement rows = %d, want 2", len(stmt.Rows))
	}
	if !stmt.Rows[0].Balance.Equal(dec("140")) {
		t.Fatalf("first row balance = %s, want 140", stmt.Rows[0].Balance)
	}
	if !stmt.ClosingBalance.Equal(dec("125")) {
		t.Fatalf("statement closing = %s, want 125", stmt.ClosingBalance)
	}

	empty, err := reports.GetAccountStatement(ctx, account.ID,
		postingDate.AddDate(0, 0, -10), postingDate.AddDate(0, 0, -5))
	if err != nil {
		t.Fatalf("empty-range statement: %v", err)
	}
	if len(empty.Rows) != 0 {
		t.Fatalf("empty-range rows = %d, want 0", len(empty.Rows))
	}
	if !empty.ClosingBalance.Equal(dec("100")) {
		t.Fatalf("empty-range closing = %s, want opening balance 100", empty.ClosingBalance)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("retail-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=retail_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
