package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

var errDriver = errors.New("driver failure")

// setupMockDB returns a sqlmock-backed connection that fails the test on unmet expectations
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})

	return db, mock
}

func TestMarketingListRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db, _ := setupMockDB(t)

			err := NewMarketingListRepository(db).Create(models.NewMarketingList(0, "", "abc", models.MemberTypeCodeContact))
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})

		t.Run("SequenceFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectBegin().WillReturnError(errDriver)

			err := NewMarketingListRepository(db).Create(models.NewMarketingList(0, "News", "abc", models.MemberTypeCodeContact))
			if !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})

		t.Run("InsertFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec("UPDATE marketing_lists_sequence").WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery("SELECT value FROM marketing_lists_sequence").
				WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))
			mock.ExpectCommit()
			mock.ExpectExec("INSERT INTO marketing_lists").WillReturnError(errDriver)

			err := NewMarketingListRepository(db).Create(models.NewMarketingList(0, "News", "abc", models.MemberTypeCodeContact))
			if !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("QueryFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery("FROM marketing_lists").WithArgs("list-1").WillReturnError(errDriver)

			_, err := NewMarketingListRepository(db).Get("list-1")
			if !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
			if errors.Is(err, shared.ErrRecordNotFound) {
				t.Error("driver failure must not look like a missing record")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NoRowsAffected", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectExec("UPDATE marketing_lists").WillReturnResult(sqlmock.NewResult(0, 0))

			list := models.NewMarketingList(0, "News", "abc", models.MemberTypeCodeContact)
			list.SetID("list-1")

			if err := NewMarketingListRepository(db).Update(list); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
		})

		t.Run("RowsAffectedFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectExec("UPDATE marketing_lists").WillReturnResult(sqlmock.NewErrorResult(errDriver))

			list := models.NewMarketingList(0, "News", "abc", models.MemberTypeCodeContact)
			list.SetID("list-1")

			if err := NewMarketingListRepository(db).Update(list); !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("Filtered By Code", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(`SELECT id, sequence, name, mailchimp_list_id, created_from_code, created_at, updated_at, deleted_at FROM marketing_lists WHERE deleted_at IS NULL AND created_from_code = \?`).
				WithArgs(2).
				WillReturnError(errDriver)

			criteria := map[string]any{models.ListSchema.CreatedFromCode.String(): models.MemberTypeCodeContact}
			if _, err := NewMarketingListRepository(db).List(criteria); !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})

		t.Run("RowError", func(t *testing.T) {
			db, mock := setupMockDB(t)
			rows := sqlmock.NewRows([]string{
				"id", "sequence", "name", "mailchimp_list_id", "created_from_code", "created_at", "updated_at", "deleted_at",
			}).AddRow("list-1", 1, "News", nil, 2, nil, nil, nil).RowError(0, errDriver)
			mock.ExpectQuery("FROM marketing_lists").WillReturnRows(rows)

			if _, err := NewMarketingListRepository(db).List(nil); !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})
	})
}

func TestPersonRepositoryErrors(t *testing.T) {
	t.Run("ListByMarketingList", func(t *testing.T) {
		t.Run("QueryFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery("FROM contacts p").WithArgs("contact", "list-1").WillReturnError(errDriver)

			if _, err := NewPersonRepository(db).ListByMarketingList("list-1", models.MemberTypeContact); !errors.Is(err, errDriver) {
				t.Errorf("expected driver error, got %v", err)
			}
		})

		t.Run("ScanFailure", func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery("FROM leads p").
				WithArgs("lead", "list-1").
				WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).AddRow("lead-1", "Ada"))

			if _, err := NewPersonRepository(db).ListByMarketingList("list-1", models.MemberTypeLead); err == nil {
				t.Error("expected scan error for short row")
			}
		})
	})

	t.Run("AddToList", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("INSERT OR IGNORE INTO list_members").WillReturnError(errDriver)

		person := models.NewContact(0, "Ada", "Lovelace", "ada@example.com")
		person.SetID("contact-1")

		if err := NewPersonRepository(db).AddToList("list-1", person); !errors.Is(err, errDriver) {
			t.Errorf("expected driver error, got %v", err)
		}
	})
}

func TestConfigurationRepositoryErrors(t *testing.T) {
	t.Run("LatestQueryFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("username IS NOT NULL AND password IS NOT NULL AND url IS NOT NULL AND api_key IS NOT NULL").
			WillReturnError(errDriver)

		_, err := NewConfigurationRepository(db).Latest(true)
		if !errors.Is(err, errDriver) {
			t.Errorf("expected driver error, got %v", err)
		}
	})

	t.Run("LatestWithoutFilter", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM mailchimp_configurations WHERE deleted_at IS NULL ORDER BY`).
			WillReturnError(sql.ErrNoRows)

		_, err := NewConfigurationRepository(db).Latest(false)
		if !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestSyncRecordRepositoryErrors(t *testing.T) {
	t.Run("CreateNegativeCounts", func(t *testing.T) {
		db, _ := setupMockDB(t)

		rec := models.NewSyncRecord(0, "list-1")
		rec.ErroredOperations = -1

		if err := NewSyncRecordRepository(db).Create(rec); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("UpdateFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("UPDATE mailchimp_syncs").WillReturnError(errDriver)

		rec := models.NewSyncRecord(0, "list-1")
		rec.SetID("sync-1")

		if err := NewSyncRecordRepository(db).Update(rec); !errors.Is(err, errDriver) {
			t.Errorf("expected driver error, got %v", err)
		}
	})

	t.Run("Filtered List Query", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`FROM mailchimp_syncs WHERE deleted_at IS NULL AND marketing_list_id = \? AND status = \? ORDER BY created_at DESC, sequence DESC`).
			WithArgs("list-1", "finished").
			WillReturnError(errDriver)

		criteria := map[string]any{
			models.SyncSchema.MarketingList.String(): "list-1",
			models.SyncSchema.Status.String():        "finished",
		}
		if _, err := NewSyncRecordRepository(db).List(criteria); !errors.Is(err, errDriver) {
			t.Errorf("expected driver error, got %v", err)
		}
	})

	t.Run("DeleteFailure", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("UPDATE mailchimp_syncs SET deleted_at").WillReturnError(errDriver)

		if err := NewSyncRecordRepository(db).Delete("sync-1"); !errors.Is(err, errDriver) {
			t.Errorf("expected driver error, got %v", err)
		}
	})
}
