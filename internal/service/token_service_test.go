package service

import (
	"context"
	"testing"
	"time"

	"devhub/internal/config"
	"devhub/internal/model"
	"devhub/internal/repository"
	"devhub/internal/repository/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tokenTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "devhub"
	cfg.JWT.AccessSecret = "test-access-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 720 * time.Hour
	return cfg
}

func parseAccessClaims(t *testing.T, cfg *config.Config, tokenString string) *model.AccessClaims {
	t.Helper()
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.AccessSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func parseRefreshClaims(t *testing.T, cfg *config.Config, tokenString string) *model.RefreshClaims {
	t.Helper()
	claims := &model.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWT.RefreshSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func Test_tokenService_IssuePair(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	cfg := tokenTestConfig()
	mockUserRepo := new(mocks.UserRepository)
	mockTokenRepo := new(mocks.TokenRepository)
	svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

	user := &model.User{UserID: uuid.New(), Role: model.RoleMember, IsActive: true}

	var record *model.RefreshToken
	mockTokenRepo.On("CreateRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.RefreshToken")).
		Run(func(args mock.Arguments) {
			record = args.Get(2).(*model.RefreshToken)
		}).
		Return(nil).Once()

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, pair)

	accessClaims := parseAccessClaims(t, cfg, pair.AccessToken)
	assert.Equal(t, model.TokenTypeAccess, accessClaims.TokenType)
	assert.Equal(t, user.UserID.String(), accessClaims.Subject)
	assert.Equal(t, model.RoleMember, accessClaims.Role)

	refreshClaims := parseRefreshClaims(t, cfg, pair.RefreshToken)
	assert.Equal(t, model.TokenTypeRefresh, refreshClaims.TokenType)
	assert.Equal(t, user.UserID.String(), refreshClaims.Subject)

	// 保存されたレコードはトークンのjti/チェーンIDと一致する
	require.NotNil(t, record)
	assert.Equal(t, refreshClaims.ID, record.ID.String())
	assert.Equal(t, refreshClaims.ChainID, record.ChainID.String())
	assert.Equal(t, user.UserID, record.UserID)

	// アクセストークンをリフレッシュトークンとして流用しても署名検証で弾かれる
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)

	mockTokenRepo.AssertExpectations(t)
}

func Test_tokenService_Refresh(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	cfg := tokenTestConfig()

	user := &model.User{UserID: uuid.New(), Role: model.RoleMember, IsActive: true}

	// 有効なリフレッシュトークンと対応するレコードを作るヘルパー
	issuePair := func(t *testing.T, svc TokenService, mockTokenRepo *mocks.TokenRepository) (*model.TokenPair, *model.RefreshToken) {
		var record *model.RefreshToken
		mockTokenRepo.On("CreateRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.RefreshToken")).
			Run(func(args mock.Arguments) {
				record = args.Get(2).(*model.RefreshToken)
			}).
			Return(nil).Once()
		pair, err := svc.IssuePair(ctx, user)
		require.NoError(t, err)
		return pair, record
	}

	t.Run("正常系: ローテーションで新ペアが発行される", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		pair, record := issuePair(t, svc, mockTokenRepo)
		oldClaims := parseRefreshClaims(t, cfg, pair.RefreshToken)

		var newRecord *model.RefreshToken
		mockTokenRepo.On("FindRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), record.ID).
			Return(record, nil).Once()
		mockUserRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), user.UserID).
			Return(user, nil).Once()
		mockTokenRepo.On("CreateRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.RefreshToken")).
			Run(func(args mock.Arguments) {
				newRecord = args.Get(2).(*model.RefreshToken)
			}).
			Return(nil).Once()
		mockTokenRepo.On("MarkReplaced", ctx, mock.AnythingOfType("*gorm.DB"), record.ID, mock.AnythingOfType("uuid.UUID")).
			Return(nil).Once()

		newPair, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotNil(t, newPair)
		assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

		// 新トークンは同じチェーンに属する
		newClaims := parseRefreshClaims(t, cfg, newPair.RefreshToken)
		assert.Equal(t, oldClaims.ChainID, newClaims.ChainID)
		assert.NotEqual(t, oldClaims.ID, newClaims.ID)
		require.NotNil(t, newRecord)
		assert.Equal(t, record.ChainID, newRecord.ChainID)

		mockTokenRepo.AssertExpectations(t)
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("異常系: 置換済みトークンの再利用で系列全体が失効する", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		pair, record := issuePair(t, svc, mockTokenRepo)
		replacedBy := uuid.New()
		record.ReplacedBy = &replacedBy

		mockTokenRepo.On("FindRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), record.ID).
			Return(record, nil).Once()
		mockTokenRepo.On("RevokeChain", ctx, mock.AnythingOfType("*gorm.DB"), record.ChainID).
			Return(nil).Once()

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrForbidden)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
		mockTokenRepo.AssertExpectations(t)
	})

	t.Run("異常系: 失効済みトークンの再提示も系列失効のうえ拒否する", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		pair, record := issuePair(t, svc, mockTokenRepo)
		revokedAt := time.Now().Add(-time.Minute)
		record.RevokedAt = &revokedAt

		mockTokenRepo.On("FindRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), record.ID).
			Return(record, nil).Once()
		// 失効済みトークンの再提示でも系列失効が走る
		mockTokenRepo.On("RevokeChain", ctx, mock.AnythingOfType("*gorm.DB"), record.ChainID).
			Return(nil).Once()

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
	})

	t.Run("異常系: レコードが存在しないトークン", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		pair, record := issuePair(t, svc, mockTokenRepo)

		mockTokenRepo.On("FindRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), record.ID).
			Return(nil, model.ErrNotFound).Once()

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
	})

	t.Run("異常系: 無効化されたアカウントのトークンは更新できない", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		pair, record := issuePair(t, svc, mockTokenRepo)

		inactive := &model.User{UserID: user.UserID, Role: model.RoleMember, IsActive: false}
		mockTokenRepo.On("FindRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), record.ID).
			Return(record, nil).Once()
		mockUserRepo.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), user.UserID).
			Return(inactive, nil).Once()

		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
	})

	t.Run("異常系: 署名が壊れたトークン", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		_, err := svc.Refresh(ctx, "not.a.jwt")
		require.Error(t, err)

		var appErr *model.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
		mockTokenRepo.AssertNotCalled(t, "FindRefreshToken", mock.Anything, mock.Anything, mock.Anything)
	})
}

func Test_tokenService_RevokeSession(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	cfg := tokenTestConfig()

	user := &model.User{UserID: uuid.New(), Role: model.RoleMember, IsActive: true}

	t.Run("正常系: ログアウトで系列が失効する", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		var record *model.RefreshToken
		mockTokenRepo.On("CreateRefreshToken", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.RefreshToken")).
			Run(func(args mock.Arguments) {
				record = args.Get(2).(*model.RefreshToken)
			}).
			Return(nil).Once()
		pair, err := svc.IssuePair(ctx, user)
		require.NoError(t, err)

		mockTokenRepo.On("RevokeChain", ctx, mock.AnythingOfType("*gorm.DB"), record.ChainID).
			Return(nil).Once()

		require.NoError(t, svc.RevokeSession(ctx, pair.RefreshToken))
		mockTokenRepo.AssertExpectations(t)
	})

	t.Run("異常系: 不正なトークンではなにも失効しない", func(t *testing.T) {
		mockUserRepo := new(mocks.UserRepository)
		mockTokenRepo := new(mocks.TokenRepository)
		svc := NewTokenService(db, mockUserRepo, mockTokenRepo, cfg)

		err := svc.RevokeSession(ctx, "garbage")
		require.Error(t, err)
		mockTokenRepo.AssertNotCalled(t, "RevokeChain", mock.Anything, mock.Anything, mock.Anything)
	})
}

// 実リポジトリとマイグレーション済みsqliteで、再利用検出の系列失効が
// DBに永続化されることを検証する。Refresh自体はエラーで終わるため、
// 失効の書き込みがそのロールバックに巻き込まれないことが要点
func Test_tokenService_Refresh_ReuseRevocationIsCommitted(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB()
	require.NoError(t, repository.Migrate(db))
	cfg := tokenTestConfig()

	user := &model.User{
		UserID:       uuid.New(),
		Name:         "rotate-" + uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Role:         model.RoleMember,
		IsActive:     true,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)

	svc := NewTokenService(db, repository.NewGormUserRepository(), repository.NewGormTokenRepository(), cfg)

	firstPair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	chainID := uuid.MustParse(parseRefreshClaims(t, cfg, firstPair.RefreshToken).ChainID)

	// ローテーション後に旧トークンを再提示する
	rotatedPair, err := svc.Refresh(ctx, firstPair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, firstPair.RefreshToken)
	require.Error(t, err)
	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)

	// 系列の全レコードに revoked_at が入っている
	var records []model.RefreshToken
	require.NoError(t, db.Where("chain_id = ?", chainID).Find(&records).Error)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.NotNil(t, record.RevokedAt, "token %s must be revoked", record.ID)
	}

	// ローテーション済みの後続トークンももう使えない
	_, err = svc.Refresh(ctx, rotatedPair.RefreshToken)
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", appErr.Detail.Code)
}
