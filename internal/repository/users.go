package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Brisinger/Sqlalchemy/internal/models"
)

// AddUser inserts one user row. A duplicate telegram id surfaces as the
// driver's unique-violation error, untranslated. Use AddUserCombined when
// the caller cannot know whether the user already exists.
func (r *Repo) AddUser(ctx context.Context, telegramID int64, fullName, languageCode string, userName, phoneNumber *string, referrerID *int64) error {
	user := models.User{
		TelegramID:   telegramID,
		FullName:     fullName,
		UserName:     userName,
		PhoneNumber:  phoneNumber,
		LanguageCode: languageCode,
		ReferrerID:   referrerID,
	}
	return r.DB.WithContext(ctx).Create(&user).Error
}

// AddUserCombined upserts a user keyed by telegram_id and returns the
// resulting row in one statement. On conflict only full_name and user_name
// are rewritten; language_code, phone_number and referrer_id keep their
// stored values, even though the insert path sets all of them. Inherited
// contract: callers must not rely on the upsert to move a language code.
func (r *Repo) AddUserCombined(ctx context.Context, telegramID int64, fullName, languageCode string, userName, phoneNumber *string, referrerID *int64) (*models.User, error) {
	user := models.User{
		TelegramID:   telegramID,
		FullName:     fullName,
		UserName:     userName,
		PhoneNumber:  phoneNumber,
		LanguageCode: languageCode,
		ReferrerID:   referrerID,
	}
	err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_name", "full_name", "updated_at"}),
		},
		clause.Returning{},
	).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns the user or nil when no row matches. Absence is not
// an error.
func (r *Repo) GetUserByID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repo) GetAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserLanguageCode selects the single language_code column; nil when the
// user does not exist.
func (r *Repo) GetUserLanguageCode(ctx context.Context, telegramID int64) (*string, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Select("language_code").
		Take(&user, "telegram_id = ?", telegramID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user.LanguageCode, nil
}

// GetAllUsersAdvanced returns at most 10 users whose language is en or uk,
// whose username contains "john" in any casing and whose telegram id is
// positive, newest first.
func (r *Repo) GetAllUsersAdvanced(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Where("language_code IN ?", []string{"en", "uk"}).
		Where("LOWER(user_name) LIKE ?", "%john%").
		Where("telegram_id > 0").
		Order("created_at DESC").
		Limit(10).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// InvitedUserRow pairs a referrer with one user they invited.
type InvitedUserRow struct {
	ParentName   string `gorm:"column:parent_name"   json:"parent_name"`
	ReferralName string `gorm:"column:referral_name" json:"referral_name"`
}

// SelectAllInvitedUsers self-joins users on referrer_id and returns one row
// per user that has a referrer.
func (r *Repo) SelectAllInvitedUsers(ctx context.Context) ([]InvitedUserRow, error) {
	var rows []InvitedUserRow
	err := r.DB.WithContext(ctx).
		Table("users AS referral").
		Select("parent.full_name AS parent_name, referral.full_name AS referral_name").
		Joins("JOIN users AS parent ON parent.telegram_id = referral.referrer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
