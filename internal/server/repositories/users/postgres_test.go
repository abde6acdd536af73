package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "bio",
	"profile_picture", "is_verified", "verification_token", "role", "created_at"}

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash.*RETURNING\s+id,\s*is_verified,\s*created_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "a@x.io", "hash", nil, nil, nil, nil, "tok", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_verified", "created_at"}).AddRow(int64(42), false, now))

	token := "tok"
	got, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "hash", VerificationToken: &token})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 || got.Username != "alice" || got.Role != models.RoleUser || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.io"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.io"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username.*FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)\s*$`

	bio := "hi"
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(int64(7), "Alice", "a@x.io", "hash", nil, nil, bio, nil, true, nil, "admin", time.Now())
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if got.ID != 7 || !got.IsAdmin() || !got.IsVerified || got.Bio == nil || *got.Bio != "hi" || got.FirstName != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+id\s*$`
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(int64(1), "a", "a@x.io", "h", nil, nil, nil, nil, false, nil, "user", time.Now()).
		AddRow(int64(2), "b", "b@x.io", "h", nil, nil, nil, nil, false, nil, "admin", time.Now())
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].Role != models.RoleAdmin {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestUpdate_MergesAndWrites(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	sel := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	upd := `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(sel).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows(userRowColumns).
		AddRow(int64(3), "c", "c@x.io", "h", nil, nil, nil, nil, false, nil, "user", time.Now()))
	mock.ExpectExec(upd).
		WithArgs(int64(3), "c@x.io", nil, nil, "new bio", nil, false, nil, "user").
		WillReturnResult(sqlmock.NewResult(0, 1))

	bio := "new bio"
	got, err := repo.Update(context.Background(), 3, models.UserPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Bio == nil || *got.Bio != "new bio" {
		t.Fatalf("bio not merged: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	mock.ExpectExec(q).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 2); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
