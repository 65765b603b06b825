package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

// plainHasher はテスト高速化のための PasswordHasher です。
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) (bool, error) {
	if !strings.HasPrefix(hash, "plain:") {
		return false, errors.New("malformed hash")
	}
	return hash == "plain:"+password, nil
}

type countingTable struct {
	*MemoryTable
	findCalls   int
	insertCalls int
	findErr     error
	insertErr   error
}

func (t *countingTable) FindByEmail(ctx context.Context, email string) (*CredentialRecord, error) {
	t.findCalls++
	if t.findErr != nil {
		return nil, t.findErr
	}
	return t.MemoryTable.FindByEmail(ctx, email)
}

func (t *countingTable) Insert(ctx context.Context, record *CredentialRecord) error {
	t.insertCalls++
	if t.insertErr != nil {
		return t.insertErr
	}
	return t.MemoryTable.Insert(ctx, record)
}

func newCountingTable() *countingTable {
	return &countingTable{MemoryTable: NewMemoryTable()}
}

func TestTableGatewayShortCircuitsEmptyInput(t *testing.T) {
	table := newCountingTable()
	gw := NewTableGateway(table, plainHasher{}, nil)

	for _, op := range []Operation{OperationLogin, OperationSignup} {
		out := gw.Execute(context.Background(), op, "", "secret1")
		if out.StatusCode != http.StatusBadRequest || out.Message != MsgCredentialsRequired {
			t.Fatalf("%s: unexpected outcome %+v", op, out)
		}
	}
	if table.findCalls+table.insertCalls != 0 {
		t.Fatalf("table must not be touched, got %d finds / %d inserts", table.findCalls, table.insertCalls)
	}
}

func TestTableGatewaySignupThenLogin(t *testing.T) {
	table := newCountingTable()
	gw := NewTableGateway(table, plainHasher{}, nil)
	ctx := context.Background()

	out := gw.Execute(ctx, OperationSignup, "user@example.com", "secret1")
	if !out.OK() || out.Message != MsgSignupSuccess || out.Identity != nil {
		t.Fatalf("unexpected signup outcome: %+v", out)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", table.Len())
	}
	stored, _ := table.MemoryTable.FindByEmail(ctx, "user@example.com")
	if stored.PasswordHash == "secret1" {
		t.Fatal("password must be stored hashed")
	}
	if stored.ID == "" || stored.CreatedAt.IsZero() {
		t.Fatalf("record metadata not populated: %+v", stored)
	}

	out = gw.Execute(ctx, OperationLogin, "user@example.com", "secret1")
	if !out.OK() || out.Message != MsgLoginSuccess {
		t.Fatalf("unexpected login outcome: %+v", out)
	}
	if out.Identity == nil || out.Identity.Email != "user@example.com" {
		t.Fatalf("unexpected identity: %+v", out.Identity)
	}
}

func TestTableGatewayLoginFailures(t *testing.T) {
	table := newCountingTable()
	_ = table.MemoryTable.Insert(context.Background(), &CredentialRecord{ID: "1", Email: "user@example.com", PasswordHash: "plain:secret1"})
	gw := NewTableGateway(table, plainHasher{}, nil)

	out := gw.Execute(context.Background(), OperationLogin, "user@example.com", "wrong-password")
	if out.StatusCode != http.StatusUnauthorized || out.Message != MsgInvalidCredentials {
		t.Fatalf("wrong password: %+v", out)
	}

	out = gw.Execute(context.Background(), OperationLogin, "nobody@example.com", "secret1")
	if out.StatusCode != http.StatusUnauthorized || out.Message != MsgInvalidCredentials {
		t.Fatalf("unknown account: %+v", out)
	}

	// メールアドレスは完全一致で検索する
	out = gw.Execute(context.Background(), OperationLogin, "USER@example.com", "secret1")
	if out.StatusCode != http.StatusUnauthorized {
		t.Fatalf("lookup must be exact-match: %+v", out)
	}
}

func TestTableGatewayLoginStorageFailure(t *testing.T) {
	table := newCountingTable()
	table.findErr = errors.New("connection reset by peer")
	gw := NewTableGateway(table, plainHasher{}, nil)

	out := gw.Execute(context.Background(), OperationLogin, "user@example.com", "secret1")
	if out.StatusCode != http.StatusInternalServerError || out.Message != MsgLoginFailed {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if !strings.Contains(out.Detail, "connection reset") {
		t.Fatalf("detail should keep the cause, got %q", out.Detail)
	}
}

func TestTableGatewayLoginMalformedHash(t *testing.T) {
	table := newCountingTable()
	_ = table.MemoryTable.Insert(context.Background(), &CredentialRecord{ID: "1", Email: "user@example.com", PasswordHash: "garbage"})
	gw := NewTableGateway(table, plainHasher{}, nil)

	out := gw.Execute(context.Background(), OperationLogin, "user@example.com", "secret1")
	if out.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestTableGatewaySignupDuplicate(t *testing.T) {
	table := newCountingTable()
	gw := NewTableGateway(table, plainHasher{}, nil)
	ctx := context.Background()

	if out := gw.Execute(ctx, OperationSignup, "user@example.com", "secret1"); !out.OK() {
		t.Fatalf("first signup failed: %+v", out)
	}
	out := gw.Execute(ctx, OperationSignup, "user@example.com", "another1")
	if out.Kind != KindConflict || out.StatusCode != http.StatusUnauthorized || out.Message != MsgAlreadyRegistered {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if table.Len() != 1 {
		t.Fatalf("duplicate signup must not create a record, have %d", table.Len())
	}
	if table.insertCalls != 1 {
		t.Fatalf("insertCalls = %d, want 1", table.insertCalls)
	}
}

func TestTableGatewaySignupStorageUniqueViolation(t *testing.T) {
	table := newCountingTable()
	table.insertErr = ErrDuplicateEmail
	gw := NewTableGateway(table, plainHasher{}, nil)

	out := gw.Execute(context.Background(), OperationSignup, "user@example.com", "secret1")
	if out.Kind != KindConflict || out.Message != MsgAlreadyRegistered {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestTableGatewaySignupInsertFailure(t *testing.T) {
	table := newCountingTable()
	table.insertErr = errors.New("disk full")
	gw := NewTableGateway(table, plainHasher{}, nil)

	out := gw.Execute(context.Background(), OperationSignup, "user@example.com", "secret1")
	if out.Kind != KindProviderFailure || out.Message != MsgCreateUserFailed {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if strings.Contains(out.Message, "disk full") {
		t.Fatal("raw storage errors must not reach the message")
	}
}

func TestTableGatewayWithBcrypt(t *testing.T) {
	gw := NewTableGateway(NewMemoryTable(), NewBcryptHasher(MinBcryptCost), nil)
	ctx := context.Background()

	if out := gw.Execute(ctx, OperationSignup, "user@example.com", "secret1"); !out.OK() {
		t.Fatalf("signup failed: %+v", out)
	}
	if out := gw.Execute(ctx, OperationLogin, "user@example.com", "secret1"); !out.OK() {
		t.Fatalf("login failed: %+v", out)
	}
	if out := gw.Execute(ctx, OperationLogin, "user@example.com", "secret2"); out.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password accepted: %+v", out)
	}
}
