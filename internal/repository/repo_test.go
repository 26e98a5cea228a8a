package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Brisinger/Sqlalchemy/internal/models"
	"github.com/Brisinger/Sqlalchemy/pkg/db"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	gdb, err := db.OpenSQLite("file::memory:")
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return New(gdb)
}

func strptr(s string) *string { return &s }

func timeOffset(i int) time.Duration { return time.Duration(i+1) * time.Minute }

func int64ptr(v int64) *int64 { return &v }

func mustAddUser(t *testing.T, r *Repo, telegramID int64, fullName, lang string, userName *string, referrerID *int64) {
	t.Helper()
	require.NoError(t, r.AddUser(context.Background(), telegramID, fullName, lang, userName, nil, referrerID))
}

func TestAddUser_DuplicateIdentityFails(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "John Doe", "en", strptr("Johnny"), nil)

	err := r.AddUser(ctx, 1, "John Doe", "en", strptr("Johnny"), nil, nil)
	require.Error(t, err)

	users, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAddUserCombined_InsertThenRead(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	user, err := r.AddUserCombined(ctx, 10, "Juan Perez", "es", strptr("juanpe"), strptr("+34 123-4567"), nil)
	require.NoError(t, err)
	require.Equal(t, int64(10), user.TelegramID)
	require.Equal(t, "Juan Perez", user.FullName)

	got, err := r.GetUserByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Juan Perez", got.FullName)
	require.Equal(t, "juanpe", *got.UserName)
	require.Equal(t, "es", got.LanguageCode)
	require.Equal(t, "+34 123-4567", *got.PhoneNumber)
}

func TestAddUserCombined_ConflictUpdatesNameOnly(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.AddUserCombined(ctx, 7, "First Name", "en", strptr("first"), strptr("111"), nil)
	require.NoError(t, err)

	// Second call wins on full_name/user_name; language_code and
	// phone_number keep their stored values even though new ones were
	// supplied.
	updated, err := r.AddUserCombined(ctx, 7, "Second Name", "uk", strptr("second"), strptr("222"), nil)
	require.NoError(t, err)
	require.Equal(t, "Second Name", updated.FullName)
	require.Equal(t, "second", *updated.UserName)
	require.Equal(t, "en", updated.LanguageCode)
	require.Equal(t, "111", *updated.PhoneNumber)

	users, err := r.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	got, err := r.GetUserByID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "Second Name", got.FullName)
	require.Equal(t, "second", *got.UserName)
	require.Equal(t, "en", got.LanguageCode)
}

func TestGetUserByID_MissingIsNotAnError(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)

	got, err := r.GetUserByID(context.Background(), 404)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetUserLanguageCode(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "John Doe", "en", nil, nil)

	code, err := r.GetUserLanguageCode(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, code)
	require.Equal(t, "en", *code)

	code, err = r.GetUserLanguageCode(ctx, 404)
	require.NoError(t, err)
	require.Nil(t, code)
}

func TestGetAllUsersAdvanced(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "Match Lower", "en", strptr("bigjohn"), nil)
	mustAddUser(t, r, 2, "Match Upper", "uk", strptr("JOHNNY"), nil)
	mustAddUser(t, r, 3, "Wrong Language", "fr", strptr("john"), nil)
	mustAddUser(t, r, 4, "Wrong Name", "en", strptr("peter"), nil)
	mustAddUser(t, r, 5, "No Name", "en", nil, nil)
	mustAddUser(t, r, -6, "Negative ID", "en", strptr("john"), nil)

	// Force distinct creation times so the DESC ordering is deterministic.
	for i, id := range []int64{1, 2} {
		err := r.DB.Model(&models.User{}).
			Where("telegram_id = ?", id).
			Update("created_at", r.DB.NowFunc().Add(-timeOffset(i))).Error
		require.NoError(t, err)
	}

	users, err := r.GetAllUsersAdvanced(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, int64(1), users[0].TelegramID)
	require.Equal(t, int64(2), users[1].TelegramID)
}

func TestSelectAllInvitedUsers(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	mustAddUser(t, r, 1, "Parent Person", "en", nil, nil)
	mustAddUser(t, r, 2, "Invited Person", "en", nil, int64ptr(1))

	rows, err := r.SelectAllInvitedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Parent Person", rows[0].ParentName)
	require.Equal(t, "Invited Person", rows[0].ReferralName)
}
