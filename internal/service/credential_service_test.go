package service

import (
	"context"
	"errors"
	"testing"

	"devhub/internal/model"
	"devhub/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"
)

// setupTestDB はサービスに渡すための *gorm.DB を用意します。
// リポジトリはモックするため、実際のDB操作には使いません
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database for testing: " + err.Error())
	}
	return db
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func Test_credentialService_Verify(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	mockUserRepo := new(mocks.UserRepository)
	credService := NewCredentialService(db, mockUserRepo)

	password := "correct horse battery staple"
	passwordHash := mustHashPassword(t, password)
	userID := uuid.New()

	activeUser := func() *model.User {
		return &model.User{
			UserID:       userID,
			Name:         "alice",
			Email:        "alice@example.com",
			Role:         model.RoleMember,
			IsActive:     true,
			PasswordHash: passwordHash,
		}
	}

	tests := []struct {
		name        string
		identifier  string
		password    string
		setupMock   func()
		wantErr     error
		wantErrCode string
		wantUser    bool
	}{
		{
			name:       "正常系: メールアドレスとパスワードが一致",
			identifier: "alice@example.com",
			password:   password,
			setupMock: func() {
				mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
					Return(activeUser(), nil).Once()
			},
			wantUser: true,
		},
		{
			name:       "異常系: ユーザーが存在しない",
			identifier: "nobody@example.com",
			password:   password,
			setupMock: func() {
				mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "nobody@example.com").
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr:     model.ErrInvalidInput,
			wantErrCode: "AUTHENTICATION_FAILED",
		},
		{
			name:       "異常系: パスワード不一致",
			identifier: "alice@example.com",
			password:   "wrong password",
			setupMock: func() {
				mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
					Return(activeUser(), nil).Once()
			},
			wantErr:     model.ErrInvalidInput,
			wantErrCode: "AUTHENTICATION_FAILED",
		},
		{
			name:       "異常系: 無効化されたアカウント",
			identifier: "alice@example.com",
			password:   password,
			setupMock: func() {
				user := activeUser()
				user.IsActive = false
				mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
					Return(user, nil).Once()
			},
			wantErr:     model.ErrForbidden,
			wantErrCode: "ACCOUNT_NOT_ACTIVE",
		},
		{
			name:       "異常系: 検索中にDBエラー",
			identifier: "alice@example.com",
			password:   password,
			setupMock: func() {
				mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice@example.com").
					Return(nil, errors.New("unexpected DB error")).Once()
			},
			wantErrCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo.Mock = mock.Mock{}
			tt.setupMock()

			user, err := credService.Verify(ctx, tt.identifier, tt.password)

			if tt.wantUser {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, userID, user.UserID)
			} else {
				require.Error(t, err)
				assert.Nil(t, user)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantErrCode, appErr.Detail.Code)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

// 存在しないユーザーとパスワード不一致で、外から区別できる差が無いことを確認する
func Test_credentialService_Verify_IndistinguishableFailures(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	mockUserRepo := new(mocks.UserRepository)
	credService := NewCredentialService(db, mockUserRepo)

	mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "ghost").
		Return(nil, model.ErrNotFound).Once()
	_, errUnknown := credService.Verify(ctx, "ghost", "whatever")

	mockUserRepo.On("FindByNameOrEmail", ctx, mock.AnythingOfType("*gorm.DB"), "alice").
		Return(&model.User{
			UserID:       uuid.New(),
			Name:         "alice",
			IsActive:     true,
			PasswordHash: mustHashPassword(t, "real password"),
		}, nil).Once()
	_, errWrongPassword := credService.Verify(ctx, "alice", "wrong password")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPassword)

	var appErrUnknown, appErrWrong *model.AppError
	require.ErrorAs(t, errUnknown, &appErrUnknown)
	require.ErrorAs(t, errWrongPassword, &appErrWrong)
	assert.Equal(t, appErrUnknown.Detail.Code, appErrWrong.Detail.Code)
	assert.Equal(t, appErrUnknown.Detail.Message, appErrWrong.Detail.Message)
}

func Test_credentialService_GetUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	mockUserRepo := new(mocks.UserRepository)
	credService := NewCredentialService(db, mockUserRepo)

	userID := uuid.New()

	t.Run("正常系: ユーザーが見つかる", func(t *testing.T) {
		mockUserRepo.Mock = mock.Mock{}
		mockUserRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(&model.User{UserID: userID, Name: "alice"}, nil).Once()

		user, err := credService.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("異常系: ユーザーが見つからない", func(t *testing.T) {
		mockUserRepo.Mock = mock.Mock{}
		mockUserRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), userID).
			Return(nil, model.ErrNotFound).Once()

		user, err := credService.GetUser(ctx, userID)
		require.Error(t, err)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, model.ErrNotFound)
		mockUserRepo.AssertExpectations(t)
	})
}
