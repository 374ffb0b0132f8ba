package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrm/backend/internal/domain/people"
	"github.com/vrm/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPersonRepository creates a GormPersonRepository with a mocked SQL connection
func newMockPersonRepository(t *testing.T) (*GormPersonRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPersonRepository(gormDB), mock, mockDB
}

func TestNewGormPersonRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormPersonRepository_FindByID(t *testing.T) {
	t.Run("finds existing person", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		personID := uuid.New()
		createdBy := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "created_by", "first_name", "last_name", "gender", "is_active"}).
			AddRow(personID, createdBy, "Jane", "Smith", "F", true)

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(personID, 1).
			WillReturnRows(rows)

		person, err := repo.FindByID(context.Background(), personID)

		assert.NoError(t, err)
		assert.NotNil(t, person)
		assert.Equal(t, personID, person.ID)
		assert.Equal(t, "Jane", person.FirstName)
		assert.Equal(t, createdBy, person.CreatedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent person", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		personID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(personID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		person, err := repo.FindByID(context.Background(), personID)

		assert.Error(t, err)
		assert.Nil(t, person)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPersonRepository_FindAll(t *testing.T) {
	t.Run("excludes inactive records by default", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "is_active"}).
			AddRow(uuid.New(), "Jane", "Smith", true)

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE is_active = \$1 ORDER BY last_name ASC.*`).
			WithArgs(true).
			WillReturnRows(rows)

		persons, err := repo.FindAll(context.Background(), shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, persons, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("includes inactive records when requested", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "is_active"})

		mock.ExpectQuery(`SELECT \* FROM "people" ORDER BY last_name ASC.*`).
			WillReturnRows(rows)

		_, err := repo.FindAll(context.Background(), shared.Filter{
			Filters: map[string]any{"include_inactive": true},
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects sort fields outside the whitelist", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id"})

		// Falls back to the default sort column
		mock.ExpectQuery(`SELECT \* FROM "people" WHERE is_active = \$1 ORDER BY last_name ASC.*`).
			WithArgs(true).
			WillReturnRows(rows)

		_, err := repo.FindAll(context.Background(), shared.Filter{
			OrderBy: "last_name; DROP TABLE people",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPersonRepository_FindDuplicates(t *testing.T) {
	dob := time.Date(1985, 3, 12, 0, 0, 0, 0, time.UTC)

	t.Run("rejects criteria without a name", func(t *testing.T) {
		repo, _, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		_, err := repo.FindDuplicates(context.Background(), people.DuplicateCriteria{Email: "x@y.com"}, nil)

		assert.ErrorIs(t, err, people.ErrMissingNameForDuplicateCheck)
	})

	t.Run("returns empty result when no rule applies", func(t *testing.T) {
		repo, _, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		matches, err := repo.FindDuplicates(context.Background(), people.DuplicateCriteria{
			FirstName: "Jane",
			LastName:  "Smith",
		}, nil)

		assert.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("combines match rules with OR over active records", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		matchID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "is_active"}).
			AddRow(matchID, "Jane", "Smith", true)

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE is_active = \$1 AND \(\(LOWER\(first_name\) = \$2 AND LOWER\(last_name\) = \$3 AND date_of_birth = \$4\) OR LOWER\(email\) = \$5\) ORDER BY created_at ASC, id ASC`).
			WithArgs(true, "jane", "smith", dob, "jane@x.com").
			WillReturnRows(rows)

		matches, err := repo.FindDuplicates(context.Background(), people.DuplicateCriteria{
			FirstName:   "Jane",
			LastName:    "Smith",
			DateOfBirth: &dob,
			Email:       "jane@x.com",
		}, nil)

		assert.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, matchID, matches[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("matches phone numbers against both stored columns", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "first_name", "last_name"})

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE is_active = \$1 AND \(\(phone_primary = \$2 OR phone_secondary = \$3\)\) ORDER BY created_at ASC, id ASC`).
			WithArgs(true, "+15551234567", "+15551234567").
			WillReturnRows(rows)

		_, err := repo.FindDuplicates(context.Background(), people.DuplicateCriteria{
			FirstName:    "Jane",
			LastName:     "Smith",
			PhonePrimary: "+15551234567",
		}, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("excludes the record under edit", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		excludeID := uuid.New()
		rows := sqlmock.NewRows([]string{"id"})

		mock.ExpectQuery(`SELECT \* FROM "people" WHERE is_active = \$1 AND \(LOWER\(email\) = \$2\) AND id <> \$3 ORDER BY created_at ASC, id ASC`).
			WithArgs(true, "jane@x.com", excludeID).
			WillReturnRows(rows)

		_, err := repo.FindDuplicates(context.Background(), people.DuplicateCriteria{
			FirstName: "Jane",
			LastName:  "Smith",
			Email:     "jane@x.com",
		}, &excludeID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPersonRepository_Create(t *testing.T) {
	t.Run("inserts a new person", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		person, err := people.NewPerson(people.PersonAttributes{
			FirstName: "Jane",
			LastName:  "Smith",
		}, uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "people"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(context.Background(), person)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("translates duplicated key to identity conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockPersonRepository(t)
		defer mockDB.Close()

		person, err := people.NewPerson(people.PersonAttributes{
			FirstName: "Jane",
			LastName:  "Smith",
		}, uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "people"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err = repo.Create(context.Background(), person)

		assert.ErrorIs(t, err, people.ErrIdentityConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditLogRepository_FindByPerson(t *testing.T) {
	t.Run("lists entries newest first", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		repo := NewGormAuditLogRepository(gormDB)
		personID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "actor_id", "action", "person_id"}).
			AddRow(uuid.New(), uuid.New(), "update", personID).
			AddRow(uuid.New(), uuid.New(), "create", personID)

		mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE person_id = \$1 ORDER BY created_at DESC, id DESC`).
			WithArgs(personID).
			WillReturnRows(rows)

		entries, err := repo.FindByPerson(context.Background(), personID, shared.Filter{})

		assert.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "update", string(entries[0].Action))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
