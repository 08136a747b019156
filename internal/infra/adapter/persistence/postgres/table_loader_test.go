package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sanctions-sync/internal/domain/entity"
	"sanctions-sync/internal/infra/adapter/persistence/postgres"
)

const insertSDN = `INSERT INTO "ofac_sdn" ("uid", "firstName", "lastName") VALUES ($1, $2, $3)`

/* ──────────────────────────────── 1. Truncate ──────────────────────────────── */

func TestTableLoader_Truncate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "ofac_sdn"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	loader := postgres.NewTableLoader(db)
	if err := loader.Truncate(context.Background(), entity.TableOFACSDN); err != nil {
		t.Fatalf("Truncate err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Truncate_SchemaQualified(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "sanctions"."un_consolidated"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := postgres.NewTableLoader(db).Truncate(context.Background(), "sanctions.un_consolidated"); err != nil {
		t.Fatalf("Truncate err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Truncate_Error(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	dbErr := errors.New("relation does not exist")
	mock.ExpectExec(`TRUNCATE TABLE`).WillReturnError(dbErr)

	err := postgres.NewTableLoader(db).Truncate(context.Background(), "missing")
	if !errors.Is(err, dbErr) {
		t.Fatalf("Truncate err=%v, want %v", err, dbErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Truncate_InvalidName(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	for _, name := range []string{"", "schema.", ".table"} {
		err := postgres.NewTableLoader(db).Truncate(context.Background(), name)
		if !errors.Is(err, postgres.ErrInvalidTableName) {
			t.Errorf("Truncate(%q) err=%v, want ErrInvalidTableName", name, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Truncate_QuotesInjection(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "ofac_sdn; DROP TABLE users"`)).
		WillReturnError(errors.New("relation does not exist"))

	_ = postgres.NewTableLoader(db).Truncate(context.Background(), "ofac_sdn; DROP TABLE users")
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. BulkInsert ──────────────────────────────── */

func TestTableLoader_BulkInsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	records := entity.SdnRecords([]entity.SdnEntry{
		{UID: "U1", FirstName: "John", LastName: "Doe"},
		{UID: "U2", FirstName: "", LastName: "ACME"},
	})

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertSDN))
	prep.ExpectExec().WithArgs("U1", "John", "Doe").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("U2", "", "ACME").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := postgres.NewTableLoader(db).BulkInsert(context.Background(), entity.TableOFACSDN, records)
	if err != nil {
		t.Fatalf("BulkInsert err=%v", err)
	}
	if n != 2 {
		t.Fatalf("BulkInsert n=%d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_BulkInsert_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	n, err := postgres.NewTableLoader(db).BulkInsert(context.Background(), entity.TableOFACSDN, nil)
	if err != nil || n != 0 {
		t.Fatalf("BulkInsert = %d, %v; want 0, nil", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_BulkInsert_StopsAndRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	records := entity.SdnRecords([]entity.SdnEntry{{UID: "1"}, {UID: "2"}, {UID: "3"}})
	dbErr := errors.New("value too long for type character varying(10)")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertSDN))
	prep.ExpectExec().WithArgs("1", "", "").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("2", "", "").WillReturnError(dbErr)
	mock.ExpectRollback()

	n, err := postgres.NewTableLoader(db).BulkInsert(context.Background(), entity.TableOFACSDN, records)
	if !errors.Is(err, dbErr) {
		t.Fatalf("BulkInsert err=%v, want %v", err, dbErr)
	}
	if n != 0 {
		t.Fatalf("BulkInsert n=%d, want 0 after rollback", n)
	}
	// record 3 must never be attempted
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_BulkInsert_Heterogeneous(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	records := []entity.Record{
		entity.SdnEntry{UID: "1"},
		entity.ConsolidatedIndividual{DataID: "2"},
	}

	_, err := postgres.NewTableLoader(db).BulkInsert(context.Background(), entity.TableOFACSDN, records)
	if !errors.Is(err, postgres.ErrHeterogeneousRecords) {
		t.Fatalf("BulkInsert err=%v, want ErrHeterogeneousRecords", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_BulkInsert_BeginError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := postgres.NewTableLoader(db).BulkInsert(context.Background(), entity.TableUNConsolidated,
		entity.IndividualRecords([]entity.ConsolidatedIndividual{{DataID: "1"}}))
	if err == nil {
		t.Fatal("BulkInsert err=nil, want error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Replace ──────────────────────────────── */

func TestTableLoader_Replace(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	records := entity.EntityRecords([]entity.ConsolidatedEntity{
		{DataID: "110404", FirstName: "AL-QAIDA", City: "Kandahar", Country: "Afghanistan"},
	})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "un_consolidated_entities"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(
		`INSERT INTO "un_consolidated_entities" ("dataid", "firstname", "un_list_type", "listed_on", "comments1", "city", "country") VALUES ($1, $2, $3, $4, $5, $6, $7)`))
	prep.ExpectExec().
		WithArgs("110404", "AL-QAIDA", "", "", "", "Kandahar", "Afghanistan").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := postgres.NewTableLoader(db).Replace(context.Background(), entity.TableUNConsolidatedEntities, records)
	if err != nil || n != 1 {
		t.Fatalf("Replace = %d, %v; want 1, nil", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Replace_EmptyTruncatesOnly(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "ofac_sdn"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := postgres.NewTableLoader(db).Replace(context.Background(), entity.TableOFACSDN, nil)
	if err != nil || n != 0 {
		t.Fatalf("Replace = %d, %v; want 0, nil", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Replace_InsertFailureKeepsOldRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	dbErr := errors.New("null value in column")
	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE TABLE`).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertSDN))
	prep.ExpectExec().WillReturnError(dbErr)
	mock.ExpectRollback()

	_, err := postgres.NewTableLoader(db).Replace(context.Background(), entity.TableOFACSDN,
		entity.SdnRecords([]entity.SdnEntry{{UID: "1"}}))
	if !errors.Is(err, dbErr) {
		t.Fatalf("Replace err=%v, want %v", err, dbErr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestTableLoader_Replace_HeterogeneousNeverTruncates(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	records := []entity.Record{entity.SdnEntry{UID: "1"}, entity.ConsolidatedEntity{DataID: "2"}}
	_, err := postgres.NewTableLoader(db).Replace(context.Background(), entity.TableOFACSDN, records)
	if !errors.Is(err, postgres.ErrHeterogeneousRecords) {
		t.Fatalf("Replace err=%v, want ErrHeterogeneousRecords", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
