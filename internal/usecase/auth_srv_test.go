package usecase

import (
	"context"
	"testing"
	"time"

	"ski-portal/internal/data/repository/mock"
	"ski-portal/internal/dto/request"
	"ski-portal/pkg/utils"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AuthServiceTestSuite struct {
	suite.Suite
	store   *mock.Store
	service AuthService
	ctx     context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.store = mock.New()
	suite.service = NewAuthService(suite.store.Repository(), utils.SessionConfig{ExpiryHours: 2}, zap.NewNop())
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) register(username, email string) string {
	resp, err := suite.service.Register(suite.ctx, &request.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "powder-day-42",
	}, request.SessionMeta{UserAgent: "test", IPAddress: "127.0.0.1"})
	suite.Require().NoError(err)
	return resp.Token
}

func (suite *AuthServiceTestSuite) TestRegisterLogsUserIn() {
	resp, err := suite.service.Register(suite.ctx, &request.RegisterRequest{
		Username: "  shredder ",
		Email:    "Shredder@Example.com",
		Password: "powder-day-42",
	}, request.SessionMeta{})
	suite.Require().NoError(err)

	suite.Equal("shredder", resp.Username)
	suite.Equal("shredder@example.com", resp.Email)
	suite.False(resp.IsAdmin)
	suite.NotEmpty(resp.Token)
	suite.WithinDuration(time.Now().Add(2*time.Hour), resp.ExpiresAt, time.Minute)

	user, err := suite.service.CurrentUser(suite.ctx, resp.Token)
	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(resp.UserID, user.ID.String())
	suite.NotEqual("powder-day-42", user.PasswordHash)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicates() {
	suite.register("shredder", "shredder@example.com")

	_, err := suite.service.Register(suite.ctx, &request.RegisterRequest{
		Username: "other",
		Email:    "SHREDDER@example.com",
		Password: "powder-day-42",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "already registered")

	_, err = suite.service.Register(suite.ctx, &request.RegisterRequest{
		Username: "Shredder",
		Email:    "other@example.com",
		Password: "powder-day-42",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "already taken")
}

func (suite *AuthServiceTestSuite) TestRegisterValidation() {
	_, err := suite.service.Register(suite.ctx, &request.RegisterRequest{
		Username: "x",
		Email:    "not-an-email",
		Password: "short",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "validation failed")
}

func (suite *AuthServiceTestSuite) TestLoginWithEmailOrUsername() {
	suite.register("shredder", "shredder@example.com")

	for _, identifier := range []string{"shredder", "SHREDDER@example.com"} {
		resp, err := suite.service.Login(suite.ctx, &request.LoginRequest{
			Identifier: identifier,
			Password:   "powder-day-42",
		}, request.SessionMeta{})
		suite.Require().NoError(err, identifier)
		suite.Equal("shredder", resp.Username)
		suite.NotEmpty(resp.Token)
	}
}

func (suite *AuthServiceTestSuite) TestLoginFailures() {
	suite.register("shredder", "shredder@example.com")

	_, err := suite.service.Login(suite.ctx, &request.LoginRequest{
		Identifier: "shredder",
		Password:   "wrong-password",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "invalid credentials")

	_, err = suite.service.Login(suite.ctx, &request.LoginRequest{
		Identifier: "nobody",
		Password:   "powder-day-42",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "invalid credentials")

	_, err = suite.service.Login(suite.ctx, &request.LoginRequest{}, request.SessionMeta{})
	suite.ErrorContains(err, "validation failed")
}

func (suite *AuthServiceTestSuite) TestLoginRejectsInactiveAccount() {
	hash, err := utils.HashPassword("powder-day-42")
	suite.Require().NoError(err)
	user := suite.store.AddUser("frozen", "frozen@example.com", hash, false)
	suite.store.Deactivate(user.ID)

	_, err = suite.service.Login(suite.ctx, &request.LoginRequest{
		Identifier: "frozen",
		Password:   "powder-day-42",
	}, request.SessionMeta{})
	suite.ErrorContains(err, "deactivated")
}

func (suite *AuthServiceTestSuite) TestLogoutRevokesSession() {
	token := suite.register("shredder", "shredder@example.com")

	suite.Require().NoError(suite.service.Logout(suite.ctx, token))

	user, err := suite.service.CurrentUser(suite.ctx, token)
	suite.NoError(err)
	suite.Nil(user)

	suite.ErrorContains(suite.service.Logout(suite.ctx, token), "already revoked")
	suite.ErrorContains(suite.service.Logout(suite.ctx, "garbage"), "invalid token")
}

func (suite *AuthServiceTestSuite) TestCurrentUser() {
	user, err := suite.service.CurrentUser(suite.ctx, "not-a-uuid")
	suite.NoError(err)
	suite.Nil(user)

	owner := suite.store.AddUser("owner", "owner@example.com", "x", false)
	expired := suite.store.AddSession(owner.ID, -time.Minute)
	user, err = suite.service.CurrentUser(suite.ctx, expired.Token.String())
	suite.NoError(err)
	suite.Nil(user)

	valid := suite.store.AddSession(owner.ID, time.Hour)
	suite.store.FindSessionError = mock.ErrSimulated
	_, err = suite.service.CurrentUser(suite.ctx, valid.Token.String())
	suite.ErrorIs(err, mock.ErrSimulated)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
